// Package azuredrive implements internal/remote.Adapter over an Azure Blob
// Storage container. A "drive" is a container; folders are simulated with
// blob-name prefixes the same way s3drive does, and presigned URLs are SAS
// URLs instead of AWS-style query-signed URLs.
package azuredrive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"

	"github.com/adrive/adrive-sync/internal/remote"
	"github.com/adrive/adrive-sync/internal/synerr"
)

const sha1MetaKey = "sha1"

// Config is the account-level credential material azuredrive needs; it
// mirrors internal/config.AzureConfig.
type Config struct {
	AccountName string
	AccountKey  string
}

// Backend is an Azure Blob-backed remote.Adapter. DriveID arguments are
// container names within the configured storage account.
type Backend struct {
	cred    *azblob.SharedKeyCredential
	client  *service.Client
	urlTTL  time.Duration
}

// New builds a Backend from an account name/key pair, adapting the
// teacher's SAS-URL construction in internal/cloud/providers/azure but
// with a long-lived shared-key client instead of a client reconstructed
// per-SAS-refresh: a one-shot run has no mid-run credential rotation to
// account for.
func New(cfg Config) (*Backend, error) {
	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, synerr.New(synerr.Config, "build azure shared key credential", err)
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
	client, err := service.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, synerr.New(synerr.Config, "build azure service client", err)
	}
	return &Backend{cred: cred, client: client, urlTTL: 15 * time.Minute}, nil
}

func folderKey(prefix string) string {
	if prefix == "" {
		return ""
	}
	if !strings.HasSuffix(prefix, "/") {
		return prefix + "/"
	}
	return prefix
}

func (b *Backend) containerClient(containerName string) *container.Client {
	return b.client.NewContainerClient(containerName)
}

// ListDrives lists the container names the configured account can see,
// backing the `adrive-sync drives` subcommand. Not part of remote.Adapter
// for the same reason as s3drive.Backend.ListDrives: discovery happens
// once, before any container is chosen.
func (b *Backend) ListDrives(ctx context.Context) ([]string, error) {
	var names []string
	pager := b.client.NewListContainersPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, synerr.New(synerr.Remote, "list containers", err)
		}
		for _, c := range page.ContainerItems {
			names = append(names, derefString(c.Name))
		}
	}
	return names, nil
}

func (b *Backend) ResolveFolder(ctx context.Context, containerName string, pathSegments []string) (remote.Entry, error) {
	prefix := folderKey(strings.Join(pathSegments, "/"))
	if prefix != "" {
		blob := b.containerClient(containerName).NewBlobClient(prefix)
		if _, err := blob.GetProperties(ctx, nil); err != nil {
			return remote.Entry{}, synerr.New(synerr.Remote, fmt.Sprintf("resolve folder %s", prefix), err)
		}
	}
	return remote.Entry{DriveID: containerName, FileID: prefix, Kind: remote.RemoteFolder}, nil
}

func (b *Backend) listChildren(ctx context.Context, containerName, prefix string) ([]remote.Entry, error) {
	var entries []remote.Entry
	cc := b.containerClient(containerName)

	pager := cc.NewListBlobsHierarchyPager("/", &container.ListBlobsHierarchyOptions{Prefix: &prefix})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, synerr.New(synerr.Remote, fmt.Sprintf("list blobs under %s", prefix), err)
		}
		for _, bp := range page.Segment.BlobPrefixes {
			key := derefString(bp.Name)
			name := strings.TrimSuffix(strings.TrimPrefix(key, prefix), "/")
			entries = append(entries, remote.Entry{DriveID: containerName, FileID: key, Name: name, Kind: remote.RemoteFolder})
		}
		for _, item := range page.Segment.BlobItems {
			key := derefString(item.Name)
			if key == prefix {
				continue
			}
			name := strings.TrimPrefix(key, prefix)
			var updated time.Time
			if item.Properties != nil && item.Properties.LastModified != nil {
				updated = item.Properties.LastModified.UTC()
			}
			entries = append(entries, remote.Entry{
				DriveID:   containerName,
				FileID:    key,
				Name:      name,
				Kind:      remote.RemoteFile,
				UpdatedAt: updated,
			})
		}
	}
	return entries, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (b *Backend) ListChildren(ctx context.Context, containerName, folderID string) ([]remote.Entry, error) {
	return b.listChildren(ctx, containerName, folderID)
}

func (b *Backend) ListChildrenFiltered(ctx context.Context, containerName, folderID string) ([]remote.Entry, error) {
	all, err := b.listChildren(ctx, containerName, folderID)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, e := range all {
		if e.Name == "passbook" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (b *Backend) CreateFolder(ctx context.Context, containerName, parentID, name string) (string, error) {
	key := parentID + name + "/"
	blob := b.containerClient(containerName).NewBlockBlobClient(key)
	if _, err := blob.GetProperties(ctx, nil); err == nil {
		return "", synerr.New(synerr.Consistency, fmt.Sprintf("create folder %s", key), fmt.Errorf("already exists"))
	}
	if _, err := blob.UploadBuffer(ctx, nil, nil); err != nil {
		return "", synerr.New(synerr.Remote, fmt.Sprintf("create folder %s", key), err)
	}
	return key, nil
}

func (b *Backend) BeginUpload(ctx context.Context, containerName, parentID, name string, size int64, sha1Hex string, mtime, ctime time.Time) (remote.BeginUploadResult, error) {
	key := parentID + name
	blob := b.containerClient(containerName).NewBlockBlobClient(key)

	props, err := blob.GetProperties(ctx, nil)
	if err == nil {
		if props.Metadata[sha1MetaKey] != nil && *props.Metadata[sha1MetaKey] == sha1Hex {
			return remote.BeginUploadResult{Session: remote.UploadSession{DriveID: containerName, FileID: key}, RapidUpload: true}, nil
		}
		return remote.BeginUploadResult{Exist: true}, nil
	}

	sasURL, err := blob.GetSASURL(sas.BlobPermissions{Create: true, Write: true}, time.Now().UTC().Add(b.urlTTL), nil)
	if err != nil {
		return remote.BeginUploadResult{}, synerr.New(synerr.Remote, fmt.Sprintf("sign put url %s", key), err)
	}

	return remote.BeginUploadResult{Session: remote.UploadSession{
		DriveID:       containerName,
		FileID:        key,
		UploadID:      key,
		PartUploadURL: sasURL,
	}}, nil
}

func (b *Backend) PutPart(ctx context.Context, session remote.UploadSession, body io.Reader, size int64) error {
	return remote.PutViaHTTP(ctx, session.PartUploadURL, body, size)
}

func (b *Backend) CompleteUpload(ctx context.Context, containerName, fileID, uploadID string) error {
	return nil // single "Put Blob" call; nothing left to finalize
}

func (b *Backend) GetDownloadURL(ctx context.Context, containerName, fileID string) (string, error) {
	blob := b.containerClient(containerName).NewBlobClient(fileID)
	sasURL, err := blob.GetSASURL(sas.BlobPermissions{Read: true}, time.Now().UTC().Add(b.urlTTL), nil)
	if err != nil {
		return "", synerr.New(synerr.Remote, fmt.Sprintf("sign get url %s", fileID), err)
	}
	return sasURL, nil
}

func (b *Backend) Delete(ctx context.Context, containerName, fileID string) error {
	if strings.HasSuffix(fileID, "/") {
		children, err := b.listChildren(ctx, containerName, fileID)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := b.Delete(ctx, containerName, child.FileID); err != nil {
				return err
			}
		}
	}
	blob := b.containerClient(containerName).NewBlobClient(fileID)
	if _, err := blob.Delete(ctx, nil); err != nil {
		return synerr.New(synerr.Remote, fmt.Sprintf("delete %s", fileID), err)
	}
	return nil
}

var _ remote.Adapter = (*Backend)(nil)
