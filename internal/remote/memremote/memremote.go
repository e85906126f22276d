// Package memremote is an in-memory implementation of remote.Adapter used
// to drive reconciliation-engine and transfer-engine tests without a real
// network dependency.
package memremote

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/adrive/adrive-sync/internal/constants"
	"github.com/adrive/adrive-sync/internal/remote"
)

type node struct {
	entry    remote.Entry
	children []string // file IDs, folders only
	body     []byte   // files only
	sha1Hex  string
}

// Adapter is an in-memory drive with one "drive" and a tree of nodes,
// serving downloads over a local httptest server so GetDownloadURL returns
// a real fetchable URL.
type Adapter struct {
	mu      sync.Mutex
	driveID string
	nodes   map[string]*node
	nextID  int
	server  *httptest.Server
}

// New creates an empty drive with a single root folder, returning the
// adapter and the root folder's file ID.
func New(driveID string) (*Adapter, string) {
	a := &Adapter{
		driveID: driveID,
		nodes:   map[string]*node{},
	}
	rootID := a.allocID()
	a.nodes[rootID] = &node{entry: remote.Entry{
		DriveID: driveID,
		FileID:  rootID,
		Name:    "",
		Kind:    remote.RemoteFolder,
	}}
	a.server = httptest.NewServer(http.HandlerFunc(a.serve))
	return a, rootID
}

// Close shuts down the backing HTTP server.
func (a *Adapter) Close() {
	a.server.Close()
}

func (a *Adapter) serve(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("id")
	a.mu.Lock()
	n, ok := a.nodes[fileID]
	a.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Write(n.body)
}

func (a *Adapter) allocID() string {
	a.nextID++
	return strconv.Itoa(a.nextID)
}

func (a *Adapter) ResolveFolder(ctx context.Context, driveID string, pathSegments []string) (remote.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	current := "1"
	for _, seg := range pathSegments {
		found := ""
		for _, childID := range a.nodes[current].children {
			if a.nodes[childID].entry.Name == seg && a.nodes[childID].entry.Kind == remote.RemoteFolder {
				found = childID
				break
			}
		}
		if found == "" {
			return remote.Entry{}, fmt.Errorf("memremote: no such folder %q", seg)
		}
		current = found
	}
	return a.nodes[current].entry, nil
}

func (a *Adapter) ListChildren(ctx context.Context, driveID, folderID string) ([]remote.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, ok := a.nodes[folderID]
	if !ok {
		return nil, fmt.Errorf("memremote: no such folder %s", folderID)
	}
	out := make([]remote.Entry, 0, len(n.children))
	for _, id := range n.children {
		out = append(out, a.nodes[id].entry)
	}
	return out, nil
}

func (a *Adapter) ListChildrenFiltered(ctx context.Context, driveID, folderID string) ([]remote.Entry, error) {
	all, err := a.ListChildren(ctx, driveID, folderID)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, e := range all {
		if e.Name == constants.PassbookName {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (a *Adapter) CreateFolder(ctx context.Context, driveID, parentID, name string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	parent, ok := a.nodes[parentID]
	if !ok {
		return "", fmt.Errorf("memremote: no such parent %s", parentID)
	}
	for _, id := range parent.children {
		if a.nodes[id].entry.Name == name {
			return "", fmt.Errorf("memremote: entry %q already exists", name)
		}
	}

	id := a.allocID()
	a.nodes[id] = &node{entry: remote.Entry{
		DriveID:      driveID,
		FileID:       id,
		ParentFileID: parentID,
		Name:         name,
		Kind:         remote.RemoteFolder,
		UpdatedAt:    time.Now().UTC(),
	}}
	parent.children = append(parent.children, id)
	return id, nil
}

func (a *Adapter) BeginUpload(ctx context.Context, driveID, parentID, name string, size int64, sha1Hex string, mtime, ctime time.Time) (remote.BeginUploadResult, error) {
	a.mu.Lock()
	parent, ok := a.nodes[parentID]
	if !ok {
		a.mu.Unlock()
		return remote.BeginUploadResult{}, fmt.Errorf("memremote: no such parent %s", parentID)
	}

	for _, id := range parent.children {
		existing := a.nodes[id]
		if existing.entry.Name != name {
			continue
		}
		if existing.entry.Kind != remote.RemoteFile {
			a.mu.Unlock()
			return remote.BeginUploadResult{}, fmt.Errorf("memremote: %q is a folder", name)
		}
		if existing.sha1Hex == sha1Hex {
			existing.entry.UpdatedAt = mtime
			a.mu.Unlock()
			return remote.BeginUploadResult{Session: remote.UploadSession{DriveID: driveID, FileID: id}, RapidUpload: true}, nil
		}
		a.mu.Unlock()
		return remote.BeginUploadResult{Exist: true}, nil
	}

	id := a.allocID()
	a.nodes[id] = &node{entry: remote.Entry{
		DriveID:      driveID,
		FileID:       id,
		ParentFileID: parentID,
		Name:         name,
		Kind:         remote.RemoteFile,
		UpdatedAt:    mtime,
	}, sha1Hex: sha1Hex}
	parent.children = append(parent.children, id)
	a.mu.Unlock()

	return remote.BeginUploadResult{Session: remote.UploadSession{
		DriveID:       driveID,
		FileID:        id,
		UploadID:      "upload-" + id,
		PartUploadURL: a.server.URL + "/put?id=" + id,
	}}, nil
}

func (a *Adapter) PutPart(ctx context.Context, session remote.UploadSession, body io.Reader, size int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	hash := sha1.Sum(data)

	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.nodes[session.FileID]
	if !ok {
		return fmt.Errorf("memremote: no such file %s", session.FileID)
	}
	n.body = data
	n.sha1Hex = hex.EncodeToString(hash[:])
	return nil
}

func (a *Adapter) CompleteUpload(ctx context.Context, driveID, fileID, uploadID string) error {
	return nil
}

func (a *Adapter) GetDownloadURL(ctx context.Context, driveID, fileID string) (string, error) {
	a.mu.Lock()
	_, ok := a.nodes[fileID]
	a.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("memremote: no such file %s", fileID)
	}
	return a.server.URL + "/get?id=" + fileID, nil
}

func (a *Adapter) Delete(ctx context.Context, driveID, fileID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, ok := a.nodes[fileID]
	if !ok {
		return nil
	}
	if n.entry.ParentFileID != "" {
		parent := a.nodes[n.entry.ParentFileID]
		for i, id := range parent.children {
			if id == fileID {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
	}
	delete(a.nodes, fileID)
	return nil
}

var _ remote.Adapter = (*Adapter)(nil)
