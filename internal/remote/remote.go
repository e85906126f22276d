// Package remote defines the façade a reconciliation engine uses to talk to
// a cloud-drive backend, independent of which cloud it actually is.
package remote

import (
	"context"
	"io"
	"time"
)

// Kind distinguishes a remote file from a remote folder.
type Kind int

const (
	// RemoteFile is a regular file entry.
	RemoteFile Kind = iota
	// RemoteFolder is a folder entry.
	RemoteFolder
)

// Entry is one remote file or folder as returned by a listing.
type Entry struct {
	DriveID      string
	FileID       string
	ParentFileID string
	Name         string
	Kind         Kind
	UpdatedAt    time.Time // UTC
}

// Locator names a drive and the folder a sync run is rooted at.
type Locator struct {
	DriveID    string
	RootFileID string
}

// UploadSession is the handle returned by BeginUpload and consumed by
// PutPart/CompleteUpload; it is only valid until CompleteUpload is called.
type UploadSession struct {
	DriveID      string
	FileID       string
	UploadID     string
	PartUploadURL string
}

// BeginUploadResult reports whether the server already has the bytes.
type BeginUploadResult struct {
	Session      UploadSession
	RapidUpload  bool // server matched by hash; no body upload needed
	Exist        bool // a conflicting file already exists (without a hash match)
}

// Adapter is the façade a reconciliation engine drives. Every operation
// reports failure explicitly; there is no retry built into the interface —
// callers decide whether and how to retry.
type Adapter interface {
	// ResolveFolder resolves path (already split into segments) under
	// driveID to a folder entry. It fails if the path does not resolve to
	// a folder.
	ResolveFolder(ctx context.Context, driveID string, pathSegments []string) (Entry, error)

	// ListChildren returns every child of folderID, including an entry
	// literally named "passbook" if present. It pages through the
	// backend's marker-based pagination until exhausted.
	ListChildren(ctx context.Context, driveID, folderID string) ([]Entry, error)

	// ListChildrenFiltered is ListChildren with any entry literally named
	// "passbook" removed.
	ListChildrenFiltered(ctx context.Context, driveID, folderID string) ([]Entry, error)

	// CreateFolder creates a folder named name under parentID, failing if
	// an entry with that name already exists (check_name_mode = refuse).
	CreateFolder(ctx context.Context, driveID, parentID, name string) (fileID string, err error)

	// BeginUpload opens an upload of a single-part file of the given size
	// and hex-encoded SHA-1, with local timestamps converted to UTC.
	BeginUpload(ctx context.Context, driveID, parentID, name string, size int64, sha1Hex string, mtime, ctime time.Time) (BeginUploadResult, error)

	// PutPart streams body to the session's upload URL.
	PutPart(ctx context.Context, session UploadSession, body io.Reader, size int64) error

	// CompleteUpload finalizes a previously begun upload.
	CompleteUpload(ctx context.Context, driveID, fileID, uploadID string) error

	// GetDownloadURL returns a URL the caller can GET to retrieve fileID's
	// content. Subject to the backend's rate limit; callers must issue
	// downloads sequentially within a folder.
	GetDownloadURL(ctx context.Context, driveID, fileID string) (string, error)

	// Delete unconditionally deletes fileID.
	Delete(ctx context.Context, driveID, fileID string) error
}
