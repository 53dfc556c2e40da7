package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"github.com/vango-dev/lazyroute/pkg/routetable"
)

// Stats counts loader activity since creation.
type Stats struct {
	// Fetches is the number of times the source was invoked.
	Fetches uint64
	// Hits is the number of loads served from the cache.
	Hits uint64
	// Joins is the number of loads that shared another caller's fetch.
	Joins uint64
	// Failures is the number of fetches that returned an error.
	Failures uint64
}

// Observer receives loader events, typically for metrics.
type Observer interface {
	BundleFetched(loaderID string, d time.Duration, err error)
	BundleCacheHit(loaderID string)
	BundleJoined(loaderID string)
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// Logger receives fetch logs. Default: slog.Default().
	Logger *slog.Logger

	// Observer receives loader events. Optional.
	Observer Observer

	// FetchTimeout bounds a single fetch. Zero means no limit.
	FetchTimeout time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*LoaderConfig)

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(c *LoaderConfig) {
		c.Logger = logger
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) LoaderOption {
	return func(c *LoaderConfig) {
		c.Observer = o
	}
}

// WithFetchTimeout bounds each fetch. The timeout applies to the fetch, not
// to any caller's wait.
func WithFetchTimeout(d time.Duration) LoaderOption {
	return func(c *LoaderConfig) {
		c.FetchTimeout = d
	}
}

// Loader deduplicates and caches bundle fetches. It is safe for concurrent use.
type Loader struct {
	source Source
	config LoaderConfig
	group  singleflight.Group

	mu    sync.RWMutex
	cache map[string]*Bundle

	fetches  atomic.Uint64
	hits     atomic.Uint64
	joins    atomic.Uint64
	failures atomic.Uint64
}

// NewLoader creates a Loader fetching from source.
func NewLoader(source Source, opts ...LoaderOption) *Loader {
	config := LoaderConfig{Logger: slog.Default()}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Loader{
		source: source,
		config: config,
		cache:  make(map[string]*Bundle),
	}
}

// Load returns the bundle for loaderID, fetching it if it is not cached.
//
// Concurrent calls for the same ID share one fetch. If ctx is done before the
// fetch completes, Load returns ctx.Err() while the fetch continues in the
// background. A done ctx fails even for a cached bundle. Fetch failures are
// returned wrapped so that errors.Is(err, ErrLoad) holds.
func (l *Loader) Load(ctx context.Context, loaderID string) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b, ok := l.Cached(loaderID); ok {
		l.hits.Inc()
		if l.config.Observer != nil {
			l.config.Observer.BundleCacheHit(loaderID)
		}
		return b, nil
	}

	// ran and hit are written by the group goroutine before the result is
	// delivered, so they are only safe to read after receiving from ch.
	var ran, hit bool
	detached := context.WithoutCancel(ctx)
	ch := l.group.DoChan(loaderID, func() (any, error) {
		ran = true
		// A fetch may have completed between the cache check above and
		// joining the group.
		if b, ok := l.Cached(loaderID); ok {
			hit = true
			return b, nil
		}
		return l.fetch(detached, loaderID)
	})

	select {
	case res := <-ch:
		switch {
		case hit:
			l.hits.Inc()
			if l.config.Observer != nil {
				l.config.Observer.BundleCacheHit(loaderID)
			}
		case !ran:
			l.joins.Inc()
			if l.config.Observer != nil {
				l.config.Observer.BundleJoined(loaderID)
			}
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Bundle), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cached returns the cached bundle for loaderID without fetching.
func (l *Loader) Cached(loaderID string) (*Bundle, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.cache[loaderID]
	return b, ok
}

// Stats returns a snapshot of the loader's counters.
func (l *Loader) Stats() Stats {
	return Stats{
		Fetches:  l.fetches.Load(),
		Hits:     l.hits.Load(),
		Joins:    l.joins.Load(),
		Failures: l.failures.Load(),
	}
}

func (l *Loader) fetch(ctx context.Context, loaderID string) (b *Bundle, err error) {
	l.fetches.Inc()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, loadError(loaderID, fmt.Errorf("panic: %v", r))
		}
		d := time.Since(start)
		if err != nil {
			l.failures.Inc()
			l.config.Logger.Warn("bundle fetch failed",
				"loader", loaderID,
				"duration", d,
				"error", err,
			)
		} else {
			l.config.Logger.Debug("bundle fetched",
				"loader", loaderID,
				"duration", d,
				"routes", b.Routes.Len(),
			)
		}
		if l.config.Observer != nil {
			l.config.Observer.BundleFetched(loaderID, d, err)
		}
	}()

	if l.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.config.FetchTimeout)
		defer cancel()
	}

	b, err = l.source.Fetch(ctx, loaderID)
	if err != nil {
		return nil, loadError(loaderID, err)
	}
	if b == nil {
		return nil, loadError(loaderID, fmt.Errorf("source returned no bundle"))
	}
	if b.Routes != nil {
		if verr := routetable.Validate(b.Routes); verr != nil {
			return nil, loadError(loaderID, verr)
		}
	}

	stored := *b
	if stored.ID == "" {
		stored.ID = loaderID
	}

	l.mu.Lock()
	l.cache[loaderID] = &stored
	l.mu.Unlock()

	return &stored, nil
}
