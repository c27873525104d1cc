package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"postboard/internal/domain"
)

func sealCmd() *cobra.Command {
	var newPassphrase string

	cmd := &cobra.Command{
		Use:   "seal <user>",
		Short: "Re-protect <user>'s private key under a new passphrase",
		Long: `seal rewrites <user>'s private key sealed with --new-passphrase. The current
passphrase, if any, is given with -p. An empty --new-passphrase stores the
key as plain PEM again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			fp, err := a.Seal(domain.UserID(args[0]), newPassphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Private key of %s resealed.\nFingerprint: %s\n", args[0], fp)
			return nil
		},
	}
	cmd.Flags().StringVar(&newPassphrase, "new-passphrase", "", "passphrase to seal the private key with")
	return cmd
}
