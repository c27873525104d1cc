package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"postboard/internal/app"
	"postboard/internal/console"
	"postboard/internal/domain"
	"postboard/internal/store"
)

var (
	configFile string
	keysDir    string
	passphrase string
	logLevel   string
)

// Execute runs the board CLI.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fang.Execute(ctx, rootCmd(), fang.WithVersion(versioninfo.Short()))
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "board <host> <port> <user>",
		Short: "Read the postboard and add a signed post",
		Long: `board connects to a postboard server as <user>, prints every post on the
board and then offers to add one. Posts addressed to <user> are decrypted
with <user>'s private key; posts to "all" are sent in the clear.`,
		Example: `  # Read the board on localhost as alice
  board localhost 9000 alice

  # Seal alice's private key, then read the board with it
  board seal alice --new-passphrase 'Corr3ct&Horse!'
  board localhost 9000 alice -p 'Corr3ct&Horse!'`,
		Args: cobra.MatchAll(cobra.ExactArgs(3), func(cmd *cobra.Command, args []string) error {
			_, err := app.ParsePort(args[1])
			return err
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), args[0], args[1], domain.UserID(args[2]))
		},
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "f", "", "path to a TOML configuration file")
	root.PersistentFlags().StringVar(&keysDir, "keys", "", "directory holding <user>.pub and <user>.prv files")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting private keys")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (ERROR, WARNING, NOTICE, INFO, DEBUG)")

	root.AddCommand(sealCmd(), fingerprintCmd())
	return root
}

// loadConfig resolves the config file and environment, then applies flags.
func loadConfig() (*app.Config, error) {
	cfg, err := app.Resolve(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if keysDir != "" {
		cfg.Keys.Dir = keysDir
	}
	if passphrase != "" {
		cfg.Keys.Passphrase = passphrase
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openApp(cfg *app.Config) (*app.App, error) {
	return app.New(cfg, app.WithLogWriter(os.Stderr))
}

func runSession(ctx context.Context, host, port string, user domain.UserID) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	con := console.New(os.Stdin, os.Stdout)

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	if _, err := a.Keys.LoadPrivateKey(user); errors.Is(err, store.ErrPassphraseRequired) && con.Interactive() {
		if cfg.Keys.Passphrase, err = con.AskSecret("Passphrase for " + user.String() + ":"); err != nil {
			_ = a.Close()
			return err
		}
		_ = a.Close()
		if a, err = openApp(cfg); err != nil {
			return err
		}
	}
	defer a.Close()

	return a.Session(ctx, net.JoinHostPort(host, port), user, con)
}
