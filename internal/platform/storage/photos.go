package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("invalid file name")

// Photos keeps uploaded verification photos in a flat directory that is also
// served under /images/.
type Photos struct {
	dir string
}

func NewPhotos(dir string) (*Photos, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir %q: %w", dir, err)
	}
	return &Photos{dir: dir}, nil
}

func (p *Photos) Dir() string {
	return p.dir
}

// Save writes src to dir/name and returns the stored base name. Names with a
// path component are rejected.
func (p *Photos) Save(ctx context.Context, name string, src io.Reader) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(p.dir, name)
	tmp, err := os.CreateTemp(p.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}
	return name, nil
}
