package cli

import (
	"context"
	"fmt"

	"github.com/adrive/adrive-sync/internal/config"
	"github.com/adrive/adrive-sync/internal/remote"
	"github.com/adrive/adrive-sync/internal/remote/azuredrive"
	"github.com/adrive/adrive-sync/internal/remote/s3drive"
	"github.com/adrive/adrive-sync/internal/synerr"
)

// buildAdapter constructs the remote.Adapter named by --provider from the
// persisted credential config. Provider selection is an orthogonal CLI
// concern: the adrive:// URI only names a drive id and path, never which
// cloud backs it.
func buildAdapter(ctx context.Context, provider string) (remote.Adapter, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, synerr.New(synerr.Config, "load credential config", err)
	}

	switch provider {
	case "s3":
		return s3drive.New(ctx, s3drive.Config{
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
	case "azure":
		return azuredrive.New(azuredrive.Config{
			AccountName: cfg.Azure.AccountName,
			AccountKey:  cfg.Azure.AccountKey,
		})
	default:
		return nil, synerr.New(synerr.Config, "select provider", fmt.Errorf("unknown --provider %q (want s3 or azure)", provider))
	}
}
