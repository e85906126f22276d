package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrive/adrive-sync/internal/remote/azuredrive"
	"github.com/adrive/adrive-sync/internal/remote/s3drive"
	"github.com/adrive/adrive-sync/internal/synerr"
)

// newDrivesCmd lists the drives (S3 buckets or Azure containers) the
// configured credentials can see. Grounded on the original's
// `drives` subcommand, which prints the account's default_drive_id; this
// version lists every visible drive rather than just the default, since
// adrive-sync takes the drive id as an explicit --target/--source flag
// instead of relying on an account-wide default.
func newDrivesCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "drives",
		Short: "List the drives (buckets/containers) visible to the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()

			adapter, err := buildAdapter(ctx, provider)
			if err != nil {
				return err
			}

			var names []string
			switch b := adapter.(type) {
			case *s3drive.Backend:
				names, err = b.ListDrives(ctx)
			case *azuredrive.Backend:
				names, err = b.ListDrives(ctx)
			default:
				return synerr.New(synerr.Config, "list drives", fmt.Errorf("provider %q does not support drive listing", provider))
			}
			if err != nil {
				return err
			}

			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "s3", "remote backend: s3 or azure")
	return cmd
}
