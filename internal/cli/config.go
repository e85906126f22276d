package cli

import (
	"github.com/spf13/cobra"

	"github.com/adrive/adrive-sync/internal/config"
)

// newConfigCmd wires the credential-bootstrap subcommand. The original's
// `config` command runs a local warp web server serving an embedded OAuth2
// setup page; that web UI is an explicit external collaborator this module
// does not reimplement (see SPEC_FULL.md §12). What remains in scope is the
// underlying concern: writing the credential TOML the CLI reads on every
// run, which set-credentials does directly from flags.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage persisted drive credentials",
	}
	cmd.AddCommand(newConfigSetCredentialsCmd())
	return cmd
}

func newConfigSetCredentialsCmd() *cobra.Command {
	var (
		oauthClientID, oauthClientSecret, oauthRefreshToken string
		s3Region, s3AccessKeyID, s3SecretAccessKey          string
		azureAccountName, azureAccountKey                   string
	)

	cmd := &cobra.Command{
		Use:   "set-credentials",
		Short: "Write drive credentials to the config file",
		Long: `set-credentials writes OAuth2 and/or cloud-provider credentials to the
config file read by every other command. Fields left unset on a command
line that modifies an existing file are preserved rather than blanked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				cfg = &config.Config{}
			}

			if cmd.Flags().Changed("oauth-client-id") {
				cfg.OAuth.ClientID = oauthClientID
			}
			if cmd.Flags().Changed("oauth-client-secret") {
				cfg.OAuth.ClientSecret = oauthClientSecret
			}
			if cmd.Flags().Changed("oauth-refresh-token") {
				cfg.OAuth.RefreshToken = oauthRefreshToken
			}
			if cmd.Flags().Changed("s3-region") {
				cfg.S3.Region = s3Region
			}
			if cmd.Flags().Changed("s3-access-key-id") {
				cfg.S3.AccessKeyID = s3AccessKeyID
			}
			if cmd.Flags().Changed("s3-secret-access-key") {
				cfg.S3.SecretAccessKey = s3SecretAccessKey
			}
			if cmd.Flags().Changed("azure-account-name") {
				cfg.Azure.AccountName = azureAccountName
			}
			if cmd.Flags().Changed("azure-account-key") {
				cfg.Azure.AccountKey = azureAccountKey
			}

			if err := config.Save(cfg); err != nil {
				return err
			}
			GetLogger().Info().Str("path", config.FilePath()).Msg("credentials saved")
			return nil
		},
	}

	cmd.Flags().StringVar(&oauthClientID, "oauth-client-id", "", "OAuth2 client id")
	cmd.Flags().StringVar(&oauthClientSecret, "oauth-client-secret", "", "OAuth2 client secret")
	cmd.Flags().StringVar(&oauthRefreshToken, "oauth-refresh-token", "", "OAuth2 refresh token")
	cmd.Flags().StringVar(&s3Region, "s3-region", "", "S3 region")
	cmd.Flags().StringVar(&s3AccessKeyID, "s3-access-key-id", "", "S3 access key id")
	cmd.Flags().StringVar(&s3SecretAccessKey, "s3-secret-access-key", "", "S3 secret access key")
	cmd.Flags().StringVar(&azureAccountName, "azure-account-name", "", "Azure storage account name")
	cmd.Flags().StringVar(&azureAccountKey, "azure-account-key", "", "Azure storage account key")

	return cmd
}
