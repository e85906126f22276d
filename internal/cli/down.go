package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrive/adrive-sync/internal/progress"
	"github.com/adrive/adrive-sync/internal/reconcile"
	"github.com/adrive/adrive-sync/internal/synerr"
)

func newDownCmd() *cobra.Command {
	var source, target, password, provider string

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Pull a remote drive folder to a local directory (remote is authoritative)",
		Long: `down makes the local directory match the remote folder: files and folders
missing or stale locally are deleted, then whatever is still missing
locally is downloaded. Recurses into matched subdirectories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			logger := GetLogger()

			loc, err := ParseRemoteURI(source)
			if err != nil {
				return err
			}
			localDir, err := ParseLocalURI(target)
			if err != nil {
				return err
			}

			adapter, err := buildAdapter(ctx, provider)
			if err != nil {
				return err
			}

			rootEntry, err := adapter.ResolveFolder(ctx, loc.DriveID, loc.PathSegments)
			if err != nil {
				return synerr.New(synerr.Consistency, fmt.Sprintf("resolve %s", source), err)
			}

			var passwordInput []byte
			if cmd.Flags().Changed("password") {
				passwordInput = []byte(password)
			}
			syncPassword, err := resolveDownPassword(ctx, adapter, loc.DriveID, rootEntry.FileID, passwordInput)
			if err != nil {
				return err
			}

			eng := reconcile.New(adapter, loc.DriveID, syncPassword)
			eng.Logger = logger
			eng.Reporter = progress.NewCLIProgress()

			if err := eng.Down(ctx, rootEntry.FileID, localDir); err != nil {
				return err
			}
			logger.Info().Msg("down complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "remote folder, as adrive:///<drive_id>/<path>")
	cmd.Flags().StringVar(&target, "target", "", "local directory, as file://<path>")
	cmd.Flags().StringVar(&password, "password", "", "per-folder sync password; required if the remote folder has a passbook")
	cmd.Flags().StringVar(&provider, "provider", "s3", "remote backend: s3 or azure")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("target")

	return cmd
}
