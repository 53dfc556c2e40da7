package bundle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/vango-dev/lazyroute/pkg/routetable"
)

// Manifest is the on-disk description of a bundle.
type Manifest struct {
	// Handle is the mount token passed to the view layer.
	Handle string `json:"handle"`

	// Routes are the child routes the bundle contributes.
	Routes []routetable.Config `json:"routes,omitempty"`
}

// DecodeManifest parses a manifest and builds the bundle it describes.
// Unknown fields are rejected.
func DecodeManifest(loaderID string, data []byte) (*Bundle, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest %q: %w", loaderID, err)
	}

	b := &Bundle{ID: loaderID, Handle: m.Handle}
	if m.Handle == "" {
		b.Handle = loaderID
	}
	if len(m.Routes) > 0 {
		table, err := routetable.Build(m.Routes)
		if err != nil {
			return nil, fmt.Errorf("manifest %q: %w", loaderID, err)
		}
		b.Routes = table
	}
	return b, nil
}

// DirSource reads "<id>.json" manifests from a file system.
type DirSource struct {
	FS fs.FS
}

// NewDirSource creates a DirSource over fsys.
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{FS: fsys}
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, loaderID string) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := loaderID + ".json"
	if loaderID == "" || !fs.ValidPath(name) || path.Base(name) != name {
		return nil, fmt.Errorf("invalid loader id %q", loaderID)
	}

	data, err := fs.ReadFile(s.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return DecodeManifest(loaderID, data)
}
