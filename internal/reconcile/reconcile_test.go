package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrive/adrive-sync/internal/cryptostream"
	"github.com/adrive/adrive-sync/internal/remote/memremote"
)

func writeFile(t *testing.T, path string, content []byte, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func TestUpFreshUnencryptedCreatesRemoteTree(t *testing.T) {
	adapter, rootID := memremote.New("drive1")
	defer adapter.Close()

	dir := t.TempDir()
	now := time.Now().Truncate(time.Second)
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("0123456789"), now)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), []byte("nested"), now)

	eng := New(adapter, "drive1", nil)
	ctx := context.Background()
	if err := eng.Up(ctx, dir, rootID); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	children, err := adapter.ListChildren(ctx, "drive1", rootID)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("expected 2 root children, got %d", len(children))
	}
}

func TestUpThenUpAgainIsIdempotent(t *testing.T) {
	adapter, rootID := memremote.New("drive1")
	defer adapter.Close()

	dir := t.TempDir()
	now := time.Now().Truncate(time.Second)
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("same content"), now)

	eng := New(adapter, "drive1", nil)
	ctx := context.Background()
	if err := eng.Up(ctx, dir, rootID); err != nil {
		t.Fatalf("first Up() failed: %v", err)
	}
	firstChildren, _ := adapter.ListChildren(ctx, "drive1", rootID)

	if err := eng.Up(ctx, dir, rootID); err != nil {
		t.Fatalf("second Up() failed: %v", err)
	}
	secondChildren, _ := adapter.ListChildren(ctx, "drive1", rootID)

	if len(firstChildren) != len(secondChildren) {
		t.Fatalf("child count changed across idempotent runs: %d vs %d", len(firstChildren), len(secondChildren))
	}
	if firstChildren[0].FileID != secondChildren[0].FileID {
		t.Errorf("file was re-uploaded (different FileID) on the idempotent second run")
	}
}

func TestUpDeletesRemoteWhenLocalIsNewer(t *testing.T) {
	adapter, rootID := memremote.New("drive1")
	defer adapter.Close()

	dir := t.TempDir()
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	path := filepath.Join(dir, "x.txt")
	writeFile(t, path, []byte("version 1"), old)

	eng := New(adapter, "drive1", nil)
	ctx := context.Background()
	if err := eng.Up(ctx, dir, rootID); err != nil {
		t.Fatalf("first Up() failed: %v", err)
	}
	firstChildren, _ := adapter.ListChildren(ctx, "drive1", rootID)
	firstID := firstChildren[0].FileID

	newer := time.Now().Truncate(time.Second)
	writeFile(t, path, []byte("version 2, longer content"), newer)

	if err := eng.Up(ctx, dir, rootID); err != nil {
		t.Fatalf("second Up() failed: %v", err)
	}
	secondChildren, err := adapter.ListChildren(ctx, "drive1", rootID)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(secondChildren) != 1 {
		t.Fatalf("expected exactly 1 child after re-upload, got %d", len(secondChildren))
	}
	if secondChildren[0].FileID == firstID {
		t.Errorf("expected the stale remote file to be deleted and replaced, FileID unchanged")
	}
}

func TestDownFreshCreatesLocalTree(t *testing.T) {
	adapter, rootID := memremote.New("drive1")
	defer adapter.Close()
	ctx := context.Background()

	dir := t.TempDir()
	src := filepath.Join(dir, "upload-source")
	writeFile(t, src, []byte("remote-only content"), time.Now())

	result, err := adapter.BeginUpload(ctx, "drive1", rootID, "a.txt", 19, "", time.Now().Truncate(time.Second), time.Now())
	if err != nil {
		t.Fatalf("BeginUpload: %v", err)
	}
	f, err := os.Open(src)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := adapter.PutPart(ctx, result.Session, f, 19); err != nil {
		f.Close()
		t.Fatalf("PutPart: %v", err)
	}
	f.Close()
	if err := adapter.CompleteUpload(ctx, "drive1", result.Session.FileID, result.Session.UploadID); err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}

	eng := New(adapter, "drive1", nil)
	localDir := t.TempDir()
	if err := eng.Down(ctx, rootID, localDir); err != nil {
		t.Fatalf("Down() failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(localDir, "a.txt"))
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(got) != "remote-only content" {
		t.Errorf("downloaded content = %q, want %q", got, "remote-only content")
	}
}

func TestDownDeletesLocalWhenRemoteIsNewer(t *testing.T) {
	adapter, rootID := memremote.New("drive1")
	defer adapter.Close()
	ctx := context.Background()

	// Seed a remote file via the same path the transfer engine uses, then
	// drive an older local copy through Down so the delete-the-loser
	// behavior is exercised via public Adapter calls only.
	dir := t.TempDir()
	src := filepath.Join(dir, "upload-source")
	writeFile(t, src, []byte("remote content, newer"), time.Now())

	eng := New(adapter, "drive1", nil)
	uploadName := "x.txt"
	result, err := adapter.BeginUpload(ctx, "drive1", rootID, uploadName, 21, "", time.Now().Truncate(time.Second), time.Now())
	if err != nil {
		t.Fatalf("BeginUpload: %v", err)
	}
	f, err := os.Open(src)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if err := adapter.PutPart(ctx, result.Session, f, 21); err != nil {
		t.Fatalf("PutPart: %v", err)
	}
	if err := adapter.CompleteUpload(ctx, "drive1", result.Session.FileID, result.Session.UploadID); err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}

	localDir := t.TempDir()
	stalePath := filepath.Join(localDir, uploadName)
	writeFile(t, stalePath, []byte("stale local content"), time.Now().Add(-time.Hour))

	if err := eng.Down(ctx, rootID, localDir); err != nil {
		t.Fatalf("Down() failed: %v", err)
	}

	got, err := os.ReadFile(stalePath)
	if err != nil {
		t.Fatalf("read %s: %v", stalePath, err)
	}
	if string(got) != "remote content, newer" {
		t.Errorf("local file content = %q, want remote content to have replaced the stale local copy", got)
	}
}

func TestUpGarbageFilenameIsDeletedAndRunContinues(t *testing.T) {
	adapter, rootID := memremote.New("drive1")
	defer adapter.Close()
	ctx := context.Background()

	password := []byte("hunter2-sync-password-0123456789")

	// An entry whose name was never encrypted under this password: it
	// will fail to decrypt and must be deleted without aborting the run.
	if _, err := adapter.CreateFolder(ctx, "drive1", rootID, "not-even-base64url-!!!"); err != nil {
		t.Fatalf("seed garbage entry: %v", err)
	}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("hello"), time.Now())

	eng := New(adapter, "drive1", password)
	if err := eng.Up(ctx, dir, rootID); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	children, err := adapter.ListChildren(ctx, "drive1", rootID)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("expected garbage entry deleted and exactly 1 real upload, got %d children", len(children))
	}
	name, err := cryptostream.DecryptFileName(children[0].Name, password)
	if err != nil {
		t.Fatalf("decrypt remaining entry name: %v", err)
	}
	if name != "a.txt" {
		t.Errorf("remaining entry name = %q, want a.txt", name)
	}
}
