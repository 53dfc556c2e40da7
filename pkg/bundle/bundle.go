package bundle

import (
	"context"
	"errors"

	lrerrors "github.com/vango-dev/lazyroute/internal/errors"
	"github.com/vango-dev/lazyroute/pkg/routetable"
)

// Bundle is a loaded lazy route target.
type Bundle struct {
	// ID is the loader ID the bundle was fetched for.
	ID string

	// Handle is the opaque mount token handed to the view layer.
	Handle any

	// Routes is the table the bundle contributes below its entry, or nil.
	Routes *routetable.Table
}

// Source fetches bundles by loader ID.
type Source interface {
	Fetch(ctx context.Context, loaderID string) (*Bundle, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, loaderID string) (*Bundle, error)

// Fetch calls f(ctx, loaderID).
func (f SourceFunc) Fetch(ctx context.Context, loaderID string) (*Bundle, error) {
	return f(ctx, loaderID)
}

var (
	// ErrLoad matches every error returned by Loader.Load for a failed fetch.
	ErrLoad = lrerrors.New(lrerrors.CodeBundleLoad)

	// ErrNotFound is returned by sources that have no bundle for an ID.
	ErrNotFound = errors.New("bundle not found")
)

func loadError(loaderID string, err error) error {
	return lrerrors.New(lrerrors.CodeBundleLoad).WithPath(loaderID).Wrap(err)
}
