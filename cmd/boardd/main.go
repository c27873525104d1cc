package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"postboard/internal/app"
)

// options holds the command line configuration.
type options struct {
	configFile string
	logLevel   string
	keysDir    string
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "boardd <port>",
		Short: "Postboard server",
		Long: `boardd keeps an in-memory board of signed posts. Every client that
connects receives the whole history, then may submit one post of its own.
Submissions whose signature does not verify against the author's public
key are discarded.`,
		Example: `  # Serve on port 9000 with keys from the current directory
  boardd 9000

  # Use a config file and a separate key directory
  boardd -f /etc/postboard.toml --keys /var/lib/postboard/keys 9000`,
		Args: cobra.MatchAll(cobra.ExactArgs(1), func(cmd *cobra.Command, args []string) error {
			_, err := app.ParsePort(args[0])
			return err
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := app.ParsePort(args[0])
			return run(cmd.Context(), opts, port)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "f", "", "path to a TOML configuration file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (ERROR, WARNING, NOTICE, INFO, DEBUG)")
	cmd.Flags().StringVar(&opts.keysDir, "keys", "", "directory holding <user>.pub files")
	return cmd
}

func run(ctx context.Context, opts options, port int) error {
	cfg, err := app.Resolve(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.keysDir != "" {
		cfg.Keys.Dir = opts.keysDir
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := a.Listen(net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return err
	}
	return b.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := fang.Execute(ctx, newRootCommand(), fang.WithVersion(versioninfo.Short()))
	stop()
	if err != nil {
		os.Exit(1)
	}
}
