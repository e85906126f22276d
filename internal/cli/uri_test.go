package cli

import "testing"

func TestParseLocalURIRejectsWrongScheme(t *testing.T) {
	if _, err := ParseLocalURI("adrive:///drive/path"); err == nil {
		t.Fatal("expected error for non-file scheme")
	}
}

func TestParseLocalURIAcceptsFileScheme(t *testing.T) {
	got, err := ParseLocalURI("file:///tmp/Backups")
	if err != nil {
		t.Fatalf("ParseLocalURI: %v", err)
	}
	if got == "" {
		t.Fatal("expected a non-empty resolved path")
	}
}

func TestParseRemoteURIRequiresTripleSlash(t *testing.T) {
	// adrive://drive_id/path parses drive_id as a URL host, not a path
	// segment, and fails the len>=3 check exactly as the original's
	// split-on-"/" validation does.
	if _, err := ParseRemoteURI("adrive://drive1/folder"); err == nil {
		t.Fatal("expected error for double-slash adrive uri")
	}
}

func TestParseRemoteURIParsesDriveAndPath(t *testing.T) {
	loc, err := ParseRemoteURI("adrive:///drive1/folder/sub")
	if err != nil {
		t.Fatalf("ParseRemoteURI: %v", err)
	}
	if loc.DriveID != "drive1" {
		t.Errorf("DriveID = %q, want drive1", loc.DriveID)
	}
	if len(loc.PathSegments) != 2 || loc.PathSegments[0] != "folder" || loc.PathSegments[1] != "sub" {
		t.Errorf("PathSegments = %v, want [folder sub]", loc.PathSegments)
	}
}

func TestParseRemoteURIPercentDecodes(t *testing.T) {
	loc, err := ParseRemoteURI("adrive:///drive1/my%20folder")
	if err != nil {
		t.Fatalf("ParseRemoteURI: %v", err)
	}
	if len(loc.PathSegments) != 1 || loc.PathSegments[0] != "my folder" {
		t.Errorf("PathSegments = %v, want [\"my folder\"]", loc.PathSegments)
	}
}

func TestParseRemoteURIRejectsEmptyFolderPath(t *testing.T) {
	if _, err := ParseRemoteURI("adrive:///drive1/"); err == nil {
		t.Fatal("expected error for empty folder path")
	}
}
