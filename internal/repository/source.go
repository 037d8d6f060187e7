package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/autopeer-io/ft/internal/core"
)

// Source lists package manifests and locates package payloads.
type Source interface {
	// Manifests returns every manifest below the source root, ordered by
	// path.
	Manifests(ctx context.Context) ([]Manifest, error)

	// Locate returns where an installer can read the payload of pkg.
	Locate(ctx context.Context, pkg *core.Package) (string, error)
}

// DirSource reads manifests from a local storage directory.
type DirSource struct {
	Root string
}

var _ Source = (*DirSource)(nil)

func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root}
}

func (s *DirSource) Manifests(ctx context.Context) ([]Manifest, error) {
	var out []Manifest
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || d.Name() != ManifestName {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, Manifest{Path: path, Data: data})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.NewConfigError(s.Root, "storage directory does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to walk storage directory %s: %w", s.Root, err)
	}
	return out, nil
}

// Locate returns the payload file, or the package directory when the
// manifest names no payload.
func (s *DirSource) Locate(_ context.Context, pkg *core.Package) (string, error) {
	dir := filepath.Dir(pkg.Path)
	if pkg.Payload == "" {
		return dir, nil
	}
	return filepath.Join(dir, pkg.Payload), nil
}
