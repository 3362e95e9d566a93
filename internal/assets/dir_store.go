package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirStore serves files from a local directory.
type DirStore struct {
	base string
}

// NewDirStore creates a store rooted at dir. The directory must exist.
func NewDirStore(dir string) (*DirStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving asset directory %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("asset directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset directory %q is not a directory", dir)
	}
	return &DirStore{base: abs}, nil
}

func (d *DirStore) String() string {
	return "dir:" + d.base
}

// resolve joins name to the base and verifies the result stays inside it.
func (d *DirStore) resolve(name string) (string, error) {
	p := filepath.Join(d.base, name)
	rel, err := filepath.Rel(d.base, p)
	if err != nil {
		return "", err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", ErrOutsideBase, name)
	}
	return p, nil
}

func (d *DirStore) Size(_ context.Context, name string) (int64, error) {
	p, err := d.resolve(name)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotExist, name)
		}
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %s is not a regular file", ErrNotExist, name)
	}
	return info.Size(), nil
}

func (d *DirStore) Open(ctx context.Context, name string, offset, length int64) (io.ReadCloser, error) {
	p, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, name)
		}
		return nil, err
	}
	return readCloser{
		Reader: ctxReader{ctx: ctx, r: io.NewSectionReader(f, offset, length)},
		Closer: f,
	}, nil
}
