package navigation

import (
	"log/slog"

	"github.com/vango-dev/lazyroute/pkg/scrollstore"
)

// DefaultMaxRedirects caps redirect chains unless WithMaxRedirects is used.
const DefaultMaxRedirects = 16

// Viewport reports the current scroll offset of the page.
type Viewport interface {
	Offset() scrollstore.Position
}

// ViewportFunc adapts a function to the Viewport interface.
type ViewportFunc func() scrollstore.Position

// Offset calls f.
func (f ViewportFunc) Offset() scrollstore.Position { return f() }

// Options configures a Controller.
type Options struct {
	// Logger receives navigation logs. Default: slog.Default().
	Logger *slog.Logger

	// RestoreScrollPosition restores recorded offsets on history navigation.
	RestoreScrollPosition bool

	// AnchorScrolling scrolls to "#fragment" targets.
	AnchorScrolling bool

	// Viewport supplies offsets to record. Optional.
	Viewport Viewport

	// ScrollStore keeps recorded offsets. Default: scrollstore.NewMemory().
	// Viewport and ScrollStore are used only by the navigation that commits,
	// under the controller's lock, and must not call back into the Controller.
	ScrollStore scrollstore.Store

	// Hooks observe every navigation.
	Hooks []Hooks

	// OnState is called with every published State, in publication order.
	// It runs while the controller's lock is held and must not call back
	// into the Controller.
	OnState func(State)

	// MaxRedirects caps redirect chains and the depth of nested lazy
	// bundles entered by one match. Default: DefaultMaxRedirects.
	MaxRedirects int
}

// Option configures a Controller.
type Option func(*Options)

// WithLogger sets the controller's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithRestoreScrollPosition enables offset restoration on Back and Forward.
func WithRestoreScrollPosition(enabled bool) Option {
	return func(o *Options) {
		o.RestoreScrollPosition = enabled
	}
}

// WithAnchorScrolling enables scrolling to "#fragment" targets.
func WithAnchorScrolling(enabled bool) Option {
	return func(o *Options) {
		o.AnchorScrolling = enabled
	}
}

// WithViewport sets the viewport whose offset is recorded before each commit.
func WithViewport(v Viewport) Option {
	return func(o *Options) {
		o.Viewport = v
	}
}

// WithScrollStore sets where offsets are kept.
func WithScrollStore(s scrollstore.Store) Option {
	return func(o *Options) {
		o.ScrollStore = s
	}
}

// WithHooks appends navigation hooks.
func WithHooks(hooks ...Hooks) Option {
	return func(o *Options) {
		o.Hooks = append(o.Hooks, hooks...)
	}
}

// WithStateListener sets the function called with every published State.
func WithStateListener(fn func(State)) Option {
	return func(o *Options) {
		o.OnState = fn
	}
}

// WithMaxRedirects caps redirect chains.
func WithMaxRedirects(n int) Option {
	return func(o *Options) {
		o.MaxRedirects = n
	}
}

func defaultOptions() Options {
	return Options{
		Logger:       slog.Default(),
		MaxRedirects: DefaultMaxRedirects,
	}
}

// NavigateOptions configures a single navigation.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Scroll controls whether a scroll instruction is issued.
	// Defaults to true.
	Scroll bool
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithoutScroll suppresses the scroll instruction for this navigation.
func WithoutScroll() NavigateOption {
	return func(o *NavigateOptions) {
		o.Scroll = false
	}
}
