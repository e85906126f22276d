package cli

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adrive/adrive-sync/internal/passbook"
	"github.com/adrive/adrive-sync/internal/remote"
	"github.com/adrive/adrive-sync/internal/synerr"
)

const passbookName = "passbook"

// findPassbook returns the root's passbook entry, if any, among all
// entries under rootID (the unfiltered listing, since callers need to know
// whether the root is otherwise empty too).
func findPassbook(ctx context.Context, adapter remote.Adapter, driveID, rootID string) (entries []remote.Entry, pb *remote.Entry, err error) {
	entries, err = adapter.ListChildren(ctx, driveID, rootID)
	if err != nil {
		return nil, nil, synerr.New(synerr.Remote, "list root entries", err)
	}
	for i := range entries {
		if entries[i].Name == passbookName {
			return entries, &entries[i], nil
		}
	}
	return entries, nil, nil
}

func fetchBytes(ctx context.Context, adapter remote.Adapter, driveID, fileID string) ([]byte, error) {
	url, err := adapter.GetDownloadURL(ctx, driveID, fileID)
	if err != nil {
		return nil, synerr.New(synerr.Remote, fmt.Sprintf("get download url for %s", fileID), err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, synerr.New(synerr.Remote, "build GET request", err)
	}
	resp, err := remote.NewHTTPClient().Do(req)
	if err != nil {
		return nil, synerr.New(synerr.Remote, "GET", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, synerr.New(synerr.Remote, "GET", fmt.Errorf("status %d", resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}

func uploadBytes(ctx context.Context, adapter remote.Adapter, driveID, parentID, name string, content []byte) error {
	sum := sha1.Sum(content)
	sha1Hex := hex.EncodeToString(sum[:])
	now := time.Now().UTC()

	result, err := adapter.BeginUpload(ctx, driveID, parentID, name, int64(len(content)), sha1Hex, now, now)
	if err != nil {
		return synerr.New(synerr.Remote, fmt.Sprintf("begin upload %s", name), err)
	}
	if result.Exist && !result.RapidUpload {
		return synerr.New(synerr.Consistency, fmt.Sprintf("upload %s", name), fmt.Errorf("file already exists"))
	}
	if result.RapidUpload {
		return nil
	}
	if err := adapter.PutPart(ctx, result.Session, bytes.NewReader(content), int64(len(content))); err != nil {
		return synerr.New(synerr.Remote, fmt.Sprintf("put %s", name), err)
	}
	if err := adapter.CompleteUpload(ctx, driveID, result.Session.FileID, result.Session.UploadID); err != nil {
		return synerr.New(synerr.Remote, fmt.Sprintf("complete upload %s", name), err)
	}
	return nil
}

// resolveUpPassword implements the up-direction policy matrix of §4.2: it
// returns the SyncPassword to use for the whole run, creating and
// uploading a fresh passbook if the root is otherwise empty and none
// exists yet.
func resolveUpPassword(ctx context.Context, adapter remote.Adapter, driveID, rootID string, passwordInput []byte) ([]byte, error) {
	if passwordInput == nil {
		return nil, nil
	}

	entries, pb, err := findPassbook(ctx, adapter, driveID, rootID)
	if err != nil {
		return nil, err
	}

	if pb != nil {
		raw, err := fetchBytes(ctx, adapter, driveID, pb.FileID)
		if err != nil {
			return nil, err
		}
		return passbook.CheckPassword(raw, passwordInput)
	}

	if len(entries) > 0 {
		return nil, synerr.New(synerr.Password, "resolve passbook", fmt.Errorf("folder is not empty and has no password"))
	}

	syncPassword, raw, err := passbook.CreatePassword(passwordInput)
	if err != nil {
		return nil, err
	}
	if err := uploadBytes(ctx, adapter, driveID, rootID, passbookName, raw); err != nil {
		return nil, err
	}
	return syncPassword, nil
}

// resolveDownPassword implements the down-direction policy of §4.2: a
// password must have a verifying passbook; no password must have no
// passbook at all.
func resolveDownPassword(ctx context.Context, adapter remote.Adapter, driveID, rootID string, passwordInput []byte) ([]byte, error) {
	_, pb, err := findPassbook(ctx, adapter, driveID, rootID)
	if err != nil {
		return nil, err
	}

	if passwordInput == nil {
		if pb != nil {
			return nil, synerr.New(synerr.Password, "resolve passbook", fmt.Errorf("remote folder is encrypted but no password was given"))
		}
		return nil, nil
	}

	if pb == nil {
		return nil, synerr.New(synerr.Password, "resolve passbook", fmt.Errorf("a password was given but the remote folder has no passbook"))
	}
	raw, err := fetchBytes(ctx, adapter, driveID, pb.FileID)
	if err != nil {
		return nil, err
	}
	return passbook.CheckPassword(raw, passwordInput)
}
