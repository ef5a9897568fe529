package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName      = "neuralsync"
	maxNameAttempts = 1000
)

// Store writes artifacts into a directory.
type Store struct {
	dir string
}

// NewStore creates a Store writing to dir. The directory is created (with
// parents) on the first Save. Pass an empty string to use the default XDG
// state path.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// Dir returns the export directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the artifact to a temp file and then links it into place
// under its name, or under name-1, name-2 ... when an earlier export already
// holds it. Existing exports are never replaced. It returns the final path.
func (s *Store) Save(a *Artifact) (string, error) {
	if a == nil {
		return "", errors.New("nil artifact")
	}
	if a.Filename == "" || filepath.Base(a.Filename) != a.Filename {
		return "", fmt.Errorf("invalid artifact name %q", a.Filename)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	ext := filepath.Ext(a.Filename)
	stem := strings.TrimSuffix(a.Filename, ext)
	for i := 0; i < maxNameAttempts; i++ {
		name := a.Filename
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		path := filepath.Join(s.dir, name)
		err := os.Link(tmpPath, path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("linking export file: %w", err)
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", a.Filename, maxNameAttempts)
}

// DefaultDir returns $XDG_STATE_HOME/neuralsync/exports, falling back to
// ~/.local/state/neuralsync/exports.
func DefaultDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName, "exports")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appDirName, "exports")
	}
	return filepath.Join(home, ".local", "state", appDirName, "exports")
}
