package transfer2

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrive/adrive-sync/internal/progress"
	"github.com/adrive/adrive-sync/internal/remote/memremote"
)

func TestUploadDownloadRoundTripPlain(t *testing.T) {
	adapter, rootID := memremote.New("drive1")
	defer adapter.Close()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	content := []byte("hello, world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	ctx := context.Background()
	now := fileModTime(t, src)

	if err := UploadFile(ctx, adapter, "drive1", rootID, "a.txt", src, now, now, nil, progress.NewNoOpProgress()); err != nil {
		t.Fatalf("UploadFile() failed: %v", err)
	}

	children, err := adapter.ListChildren(ctx, "drive1", rootID)
	if err != nil {
		t.Fatalf("ListChildren() failed: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}

	dst := filepath.Join(dir, "a-downloaded.txt")
	if err := DownloadFile(ctx, adapter, "drive1", children[0].FileID, dst, nil, progress.NewNoOpProgress()); err != nil {
		t.Fatalf("DownloadFile() failed: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("downloaded content = %q, want %q", got, content)
	}
}

func TestUploadDownloadRoundTripEncrypted(t *testing.T) {
	adapter, rootID := memremote.New("drive1")
	defer adapter.Close()

	dir := t.TempDir()
	src := filepath.Join(dir, "b.bin")
	content := make([]byte, 5) // short file, single chunk
	copy(content, []byte("5byte"))
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	ctx := context.Background()
	now := fileModTime(t, src)
	password := []byte("sync-password-1234567890")

	if err := UploadFile(ctx, adapter, "drive1", rootID, "enc-name", src, now, now, password, progress.NewNoOpProgress()); err != nil {
		t.Fatalf("UploadFile() failed: %v", err)
	}

	children, err := adapter.ListChildren(ctx, "drive1", rootID)
	if err != nil {
		t.Fatalf("ListChildren() failed: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}

	dst := filepath.Join(dir, "b-downloaded.bin")
	if err := DownloadFile(ctx, adapter, "drive1", children[0].FileID, dst, password, progress.NewNoOpProgress()); err != nil {
		t.Fatalf("DownloadFile() failed: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("downloaded content = %q, want %q", got, content)
	}
}

func TestUploadRapidUploadSkipsSecondPut(t *testing.T) {
	adapter, rootID := memremote.New("drive1")
	defer adapter.Close()

	dir := t.TempDir()
	src := filepath.Join(dir, "c.txt")
	if err := os.WriteFile(src, []byte("same bytes"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	ctx := context.Background()
	now := fileModTime(t, src)

	if err := UploadFile(ctx, adapter, "drive1", rootID, "c.txt", src, now, now, nil, progress.NewNoOpProgress()); err != nil {
		t.Fatalf("first UploadFile() failed: %v", err)
	}

	folder2, err := adapter.CreateFolder(ctx, "drive1", rootID, "folder2")
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}

	if err := UploadFile(ctx, adapter, "drive1", folder2, "c.txt", src, now, now, nil, progress.NewNoOpProgress()); err != nil {
		t.Fatalf("second UploadFile() failed: %v", err)
	}
}

func fileModTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	return info.ModTime()
}
