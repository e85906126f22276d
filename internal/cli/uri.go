package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/adrive/adrive-sync/internal/pathutil"
	"github.com/adrive/adrive-sync/internal/synerr"
)

// ParseLocalURI validates a file:// URI and returns its resolved filesystem
// path, grounded on original_source's source/target scheme checks in
// up.rs/down.rs (scheme must be "file", the path must name an existing
// directory — checked by the caller, not here). The path component is run
// through pathutil.ResolveAbsolutePath so a leading "~" and any junction/
// symlink ancestors resolve the same way regardless of which command is
// invoked, matching how the teacher's CLI/GUI/Tray all shared one resolver.
func ParseLocalURI(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", synerr.New(synerr.Config, fmt.Sprintf("parse uri %q", raw), err)
	}
	if u.Scheme != "file" {
		return "", synerr.New(synerr.Config, fmt.Sprintf("parse uri %q", raw), fmt.Errorf("scheme must be file://, got %q", u.Scheme))
	}
	path := u.Path
	if u.Host == "~" {
		// file://~/foo parses "~" as the URI host; put it back in front.
		path = "~" + path
	}
	if path == "" {
		return "", synerr.New(synerr.Config, fmt.Sprintf("parse uri %q", raw), fmt.Errorf("empty path"))
	}

	resolved, err := pathutil.ResolveAbsolutePath(path)
	if err != nil {
		return "", synerr.New(synerr.Config, fmt.Sprintf("resolve path %q", path), err)
	}
	return resolved, nil
}

// RemoteLocation is a parsed adrive:// URI: a drive/bucket/container id and
// the path segments under it.
type RemoteLocation struct {
	DriveID      string
	PathSegments []string
}

// ParseRemoteURI validates an adrive:// URI of the shape
// adrive:///<drive_id>/<path...> and splits it into a drive id and path
// segments, percent-decoding each segment. Grounded on up.rs/down.rs:
// `target_sp.len() < 3 || target_sp[0] != ""` (the URI path, split on "/",
// must start with an empty segment from the leading slash, then the drive
// id, then at least one real path segment).
func ParseRemoteURI(raw string) (RemoteLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return RemoteLocation{}, synerr.New(synerr.Config, fmt.Sprintf("parse uri %q", raw), err)
	}
	if u.Scheme != "adrive" {
		return RemoteLocation{}, synerr.New(synerr.Config, fmt.Sprintf("parse uri %q", raw), fmt.Errorf("scheme must be adrive://, got %q", u.Scheme))
	}

	path := u.Opaque
	if path == "" {
		path = u.Path
	}
	segments := strings.Split(path, "/")
	if len(segments) < 3 || segments[0] != "" {
		return RemoteLocation{}, synerr.New(synerr.Config, fmt.Sprintf("parse uri %q", raw),
			fmt.Errorf("path must be adrive:///<drive_id>/<folder path>"))
	}

	driveID, err := url.PathUnescape(segments[1])
	if err != nil {
		return RemoteLocation{}, synerr.New(synerr.Config, fmt.Sprintf("parse uri %q", raw), err)
	}
	if driveID == "" {
		return RemoteLocation{}, synerr.New(synerr.Config, fmt.Sprintf("parse uri %q", raw), fmt.Errorf("empty drive id"))
	}

	rest := segments[2:]
	decoded := make([]string, 0, len(rest))
	for _, seg := range rest {
		if seg == "" {
			continue
		}
		d, err := url.PathUnescape(seg)
		if err != nil {
			return RemoteLocation{}, synerr.New(synerr.Config, fmt.Sprintf("parse uri %q", raw), err)
		}
		decoded = append(decoded, d)
	}
	if len(decoded) == 0 {
		return RemoteLocation{}, synerr.New(synerr.Config, fmt.Sprintf("parse uri %q", raw), fmt.Errorf("empty folder path"))
	}

	return RemoteLocation{DriveID: driveID, PathSegments: decoded}, nil
}
