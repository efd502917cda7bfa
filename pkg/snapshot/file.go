package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
)

// validName restricts snapshot names to portable file names.
var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// FileStore keeps each snapshot in <dir>/<name>.json. Files are written
// atomically so that a crashed run never leaves a truncated snapshot.
type FileStore struct {
	dir string
}

// NewFileStore creates a store in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes s, replacing any snapshot with the same name.
func (fs *FileStore) Save(_ context.Context, s *Snapshot) error {
	path, err := fs.path(s.Name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return writeFileAtomic(path, data)
}

// Load reads the snapshot called name.
func (fs *FileStore) Load(_ context.Context, name string) (*Snapshot, error) {
	path, err := fs.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot %q", name)
	}
	return &s, nil
}

// List returns every snapshot ordered by name.
func (fs *FileStore) List(ctx context.Context) ([]*Snapshot, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var out []*Snapshot
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || !validName.MatchString(name) {
			continue
		}
		s, err := fs.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Snapshot) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Delete removes the snapshot called name.
func (fs *FileStore) Delete(_ context.Context, name string) error {
	path, err := fs.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return notFound(name)
		}
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close does nothing for file stores.
func (fs *FileStore) Close() error { return nil }

func (fs *FileStore) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"invalid snapshot name %q (letters, digits, '.', '_' and '-' only)", name)
	}
	return filepath.Join(fs.dir, name+".json"), nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	tmpPath = ""
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
