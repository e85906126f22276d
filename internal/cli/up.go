package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrive/adrive-sync/internal/progress"
	"github.com/adrive/adrive-sync/internal/reconcile"
	"github.com/adrive/adrive-sync/internal/synerr"
)

func newUpCmd() *cobra.Command {
	var source, target, password, provider string

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Push a local directory to a remote drive folder (local is authoritative)",
		Long: `up makes the remote folder match the local directory: files and folders
missing or stale on the remote are deleted, then whatever the remote is
still missing is uploaded. Recurses into matched subdirectories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			logger := GetLogger()

			localDir, err := ParseLocalURI(source)
			if err != nil {
				return err
			}
			loc, err := ParseRemoteURI(target)
			if err != nil {
				return err
			}

			adapter, err := buildAdapter(ctx, provider)
			if err != nil {
				return err
			}

			rootEntry, err := adapter.ResolveFolder(ctx, loc.DriveID, loc.PathSegments)
			if err != nil {
				return synerr.New(synerr.Consistency, fmt.Sprintf("resolve %s", target), err)
			}

			var passwordInput []byte
			if cmd.Flags().Changed("password") {
				passwordInput = []byte(password)
			}
			syncPassword, err := resolveUpPassword(ctx, adapter, loc.DriveID, rootEntry.FileID, passwordInput)
			if err != nil {
				return err
			}

			eng := reconcile.New(adapter, loc.DriveID, syncPassword)
			eng.Logger = logger
			eng.Reporter = progress.NewCLIProgress()

			if err := eng.Up(ctx, localDir, rootEntry.FileID); err != nil {
				return err
			}
			logger.Info().Msg("up complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "local directory, as file://<path>")
	cmd.Flags().StringVar(&target, "target", "", "remote folder, as adrive:///<drive_id>/<path>")
	cmd.Flags().StringVar(&password, "password", "", "per-folder sync password; omit to run unencrypted")
	cmd.Flags().StringVar(&provider, "provider", "s3", "remote backend: s3 or azure")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("target")

	return cmd
}
