// Package reconcile implements the three-phase reconciliation engine that
// compares a local directory subtree to a remote folder subtree and issues
// delete / create / transfer actions, recursing into subfolders.
//
// Both directions share the same phase structure (scan, delete the loser,
// re-list and transfer) and differ only in which side is authoritative.
// Each deletes the destination copy of a file only when the source copy is
// strictly newer at whole-second granularity, so equal timestamps leave the
// destination in place in both directions.
package reconcile

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrive/adrive-sync/internal/cryptostream"
	"github.com/adrive/adrive-sync/internal/localfs"
	"github.com/adrive/adrive-sync/internal/logging"
	"github.com/adrive/adrive-sync/internal/progress"
	"github.com/adrive/adrive-sync/internal/remote"
	"github.com/adrive/adrive-sync/internal/synerr"
	"github.com/adrive/adrive-sync/internal/transfer2"
)

// Engine holds everything a recursive run needs that does not change
// across folder levels: the remote adapter, the drive it talks to, and
// the (optional) SyncPassword shared by every file and folder name in the
// run. SyncPassword is nil for an unencrypted run.
type Engine struct {
	Adapter      remote.Adapter
	DriveID      string
	SyncPassword []byte
	Logger       *logging.Logger
	Reporter     progress.Reporter
}

// New builds an Engine with a default logger and a no-op progress
// reporter; callers that want progress output or custom logging should
// set those fields after construction.
func New(adapter remote.Adapter, driveID string, syncPassword []byte) *Engine {
	return &Engine{
		Adapter:      adapter,
		DriveID:      driveID,
		SyncPassword: syncPassword,
		Logger:       logging.NewDefaultCLILogger(),
		Reporter:     progress.NewNoOpProgress(),
	}
}

func (e *Engine) decryptName(encoded string) (plain string, ok bool) {
	if e.SyncPassword == nil {
		return encoded, true
	}
	plain, err := cryptostream.DecryptFileName(encoded, e.SyncPassword)
	if err != nil {
		return "", false
	}
	return plain, true
}

func (e *Engine) encryptName(plain string) (string, error) {
	if e.SyncPassword == nil {
		return plain, nil
	}
	encoded, err := cryptostream.EncryptFileName(plain, e.SyncPassword)
	if err != nil {
		return "", synerr.New(synerr.Crypto, fmt.Sprintf("encrypt name %q", plain), err)
	}
	return encoded, nil
}

// secondsAfter reports whether a is strictly later than b at whole-second
// granularity, per the spec's "times are compared as whole seconds" rule.
func secondsAfter(a, b time.Time) bool {
	return a.Unix() > b.Unix()
}

// Up recurses over localDir and remoteFolderID, making the remote side
// match local: it is the local-authoritative direction.
func (e *Engine) Up(ctx context.Context, localDir, remoteFolderID string) error {
	e.Logger.Infof("up: %s", localDir)

	localEntries, err := localfs.List(localDir)
	if err != nil {
		return synerr.New(synerr.LocalIO, fmt.Sprintf("scan %s", localDir), err)
	}
	remoteEntries, err := e.Adapter.ListChildrenFiltered(ctx, e.DriveID, remoteFolderID)
	if err != nil {
		return synerr.New(synerr.Remote, fmt.Sprintf("list children of %s", remoteFolderID), err)
	}

	// Phase A: index the local side by plaintext name, split by kind —
	// a remote file is only ever matched against a local file of the same
	// name, never a local directory, and vice versa.
	localFileMTime := make(map[string]time.Time, len(localEntries))
	localDirNames := make(map[string]bool, len(localEntries))
	for _, le := range localEntries {
		switch le.Kind {
		case localfs.File:
			localFileMTime[le.Name] = le.MTime
		case localfs.Dir:
			localDirNames[le.Name] = true
		}
	}

	// Phase B: delete the loser. The loser is a remote entry absent
	// locally, or strictly older than its local counterpart.
	deleted := false
	for _, re := range remoteEntries {
		name, ok := e.decryptName(re.Name)
		if !ok {
			e.Logger.Warnf("deleting remote entry with undecryptable name under %s", localDir)
			if err := e.Adapter.Delete(ctx, e.DriveID, re.FileID); err != nil {
				return synerr.New(synerr.Remote, "delete undecryptable remote entry", err)
			}
			deleted = true
			continue
		}

		remove := false
		switch re.Kind {
		case remote.RemoteFile:
			mtime, exists := localFileMTime[name]
			if !exists || secondsAfter(mtime, re.UpdatedAt) {
				remove = true
			}
		case remote.RemoteFolder:
			if !localDirNames[name] {
				remove = true
			}
		}
		if remove {
			e.Logger.Infof("deleting remote entry %s (stale or absent locally)", filepath.Join(localDir, name))
			if err := e.Adapter.Delete(ctx, e.DriveID, re.FileID); err != nil {
				return synerr.New(synerr.Remote, fmt.Sprintf("delete remote entry %s", name), err)
			}
			deleted = true
		}
	}

	if deleted {
		remoteEntries, err = e.Adapter.ListChildrenFiltered(ctx, e.DriveID, remoteFolderID)
		if err != nil {
			return synerr.New(synerr.Remote, fmt.Sprintf("re-list children of %s", remoteFolderID), err)
		}
	}

	remoteByEncryptedName := make(map[string]remote.Entry, len(remoteEntries))
	for _, re := range remoteEntries {
		remoteByEncryptedName[re.Name] = re
	}

	// Phase C: transfer whatever the remote side is still missing.
	for _, le := range localEntries {
		encName, err := e.encryptName(le.Name)
		if err != nil {
			return err
		}

		switch le.Kind {
		case localfs.File:
			if _, exists := remoteByEncryptedName[encName]; exists {
				continue
			}
			localPath := filepath.Join(localDir, le.Name)
			if err := transfer2.UploadFile(ctx, e.Adapter, e.DriveID, remoteFolderID, encName, localPath, le.MTime, le.CTime, e.SyncPassword, e.Reporter); err != nil {
				return err
			}
		case localfs.Dir:
			childID := ""
			if existing, ok := remoteByEncryptedName[encName]; ok {
				childID = existing.FileID
			} else {
				childID, err = e.Adapter.CreateFolder(ctx, e.DriveID, remoteFolderID, encName)
				if err != nil {
					return synerr.New(synerr.Remote, fmt.Sprintf("create remote folder %s", le.Name), err)
				}
			}
			if err := e.Up(ctx, filepath.Join(localDir, le.Name), childID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Down recurses over remoteFolderID and localDir, making the local side
// match remote: it is the remote-authoritative direction.
func (e *Engine) Down(ctx context.Context, remoteFolderID, localDir string) error {
	e.Logger.Infof("down: %s", localDir)

	remoteEntries, err := e.Adapter.ListChildrenFiltered(ctx, e.DriveID, remoteFolderID)
	if err != nil {
		return synerr.New(synerr.Remote, fmt.Sprintf("list children of %s", remoteFolderID), err)
	}
	localEntries, err := localfs.List(localDir)
	if err != nil {
		return synerr.New(synerr.LocalIO, fmt.Sprintf("scan %s", localDir), err)
	}

	// Phase A: index the remote side by plaintext name, split by kind.
	// A name that fails to decrypt is deleted immediately — this is
	// deliberately preserved even though the user asked to download, not
	// delete: an undecryptable remote name is treated as corruption on
	// both directions.
	remoteFileUpdated := make(map[string]time.Time, len(remoteEntries))
	remoteDirNames := make(map[string]bool, len(remoteEntries))
	remoteDeleted := false
	for _, re := range remoteEntries {
		name, ok := e.decryptName(re.Name)
		if !ok {
			e.Logger.Warnf("deleting remote entry with undecryptable name under %s", localDir)
			if err := e.Adapter.Delete(ctx, e.DriveID, re.FileID); err != nil {
				return synerr.New(synerr.Remote, "delete undecryptable remote entry", err)
			}
			remoteDeleted = true
			continue
		}
		switch re.Kind {
		case remote.RemoteFile:
			remoteFileUpdated[name] = re.UpdatedAt
		case remote.RemoteFolder:
			remoteDirNames[name] = true
		}
	}

	// Phase B: delete the loser. The loser is a local entry absent
	// remotely, or strictly older than its remote counterpart.
	localDeleted := false
	for _, le := range localEntries {
		remove := false
		switch le.Kind {
		case localfs.File:
			updated, exists := remoteFileUpdated[le.Name]
			if !exists || secondsAfter(updated, le.MTime) {
				remove = true
			}
		case localfs.Dir:
			if !remoteDirNames[le.Name] {
				remove = true
			}
		}
		if remove {
			localPath := filepath.Join(localDir, le.Name)
			e.Logger.Infof("deleting local entry %s (stale or absent remotely)", localPath)
			if err := localfs.Remove(localPath); err != nil {
				return synerr.New(synerr.LocalIO, fmt.Sprintf("delete local entry %s", localPath), err)
			}
			localDeleted = true
		}
	}

	if remoteDeleted {
		remoteEntries, err = e.Adapter.ListChildrenFiltered(ctx, e.DriveID, remoteFolderID)
		if err != nil {
			return synerr.New(synerr.Remote, fmt.Sprintf("re-list children of %s", remoteFolderID), err)
		}
	}
	if localDeleted {
		localEntries, err = localfs.List(localDir)
		if err != nil {
			return synerr.New(synerr.LocalIO, fmt.Sprintf("re-scan %s", localDir), err)
		}
	}

	localNames := make(map[string]bool, len(localEntries))
	for _, le := range localEntries {
		localNames[le.Name] = true
	}

	// Phase C: transfer whatever the local side is still missing.
	for _, re := range remoteEntries {
		name, ok := e.decryptName(re.Name)
		if !ok {
			e.Logger.Warnf("deleting remote entry with undecryptable name under %s", localDir)
			if err := e.Adapter.Delete(ctx, e.DriveID, re.FileID); err != nil {
				return synerr.New(synerr.Remote, "delete undecryptable remote entry", err)
			}
			continue
		}

		localPath := filepath.Join(localDir, name)
		switch re.Kind {
		case remote.RemoteFile:
			if localNames[name] {
				continue
			}
			if err := transfer2.DownloadFile(ctx, e.Adapter, e.DriveID, re.FileID, localPath, e.SyncPassword, e.Reporter); err != nil {
				return err
			}
		case remote.RemoteFolder:
			if !localNames[name] {
				if err := localfs.EnsureDir(localPath); err != nil {
					return synerr.New(synerr.LocalIO, fmt.Sprintf("create local folder %s", localPath), err)
				}
			}
			if err := e.Down(ctx, re.FileID, localPath); err != nil {
				return err
			}
		}
	}
	return nil
}
