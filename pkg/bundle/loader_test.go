package bundle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/atomic"

	"github.com/vango-dev/lazyroute/pkg/routetable"
)

// countingSource counts fetches and optionally blocks until released.
type countingSource struct {
	calls   atomic.Int32
	started chan string
	release chan struct{}
	err     error
}

func newCountingSource() *countingSource {
	return &countingSource{started: make(chan string, 16)}
}

func (s *countingSource) Fetch(ctx context.Context, id string) (*Bundle, error) {
	s.calls.Inc()
	s.started <- id
	if s.release != nil {
		<-s.release
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &Bundle{Handle: id + "-module"}, nil
}

func waitCached(t *testing.T, l *Loader, id string) *Bundle {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b, ok := l.Cached(id); ok {
			return b
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("bundle %q never cached", id)
	return nil
}

func TestLoaderDeduplicatesConcurrentLoads(t *testing.T) {
	src := newCountingSource()
	src.release = make(chan struct{})
	l := NewLoader(src)

	const callers = 8
	results := make([]*Bundle, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := l.Load(context.Background(), "account")
			if err != nil {
				t.Errorf("Load error: %v", err)
				return
			}
			results[i] = b
		}(i)
	}

	<-src.started
	close(src.release)
	wg.Wait()

	if got := src.calls.Load(); got != 1 {
		t.Fatalf("source called %d times, want 1", got)
	}
	for i, b := range results {
		if b != results[0] {
			t.Errorf("caller %d got a different bundle", i)
		}
	}
	stats := l.Stats()
	if stats.Fetches != 1 {
		t.Errorf("Fetches = %d, want 1", stats.Fetches)
	}
	if stats.Joins+stats.Hits != callers-1 {
		t.Errorf("Joins+Hits = %d, want %d", stats.Joins+stats.Hits, callers-1)
	}
}

func TestLoaderCachesSuccess(t *testing.T) {
	src := newCountingSource()
	l := NewLoader(src)

	first, err := l.Load(context.Background(), "account")
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Load(context.Background(), "account")
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("second load must return the cached bundle")
	}
	if first.ID != "account" {
		t.Errorf("ID = %q, want account", first.ID)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source called %d times, want 1", got)
	}
	if got := l.Stats().Hits; got != 1 {
		t.Errorf("Hits = %d, want 1", got)
	}
}

func TestLoaderCachedBundleHonorsDoneContext(t *testing.T) {
	src := newCountingSource()
	l := NewLoader(src)
	if _, err := l.Load(context.Background(), "account"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Load(ctx, "account"); !errors.Is(err, context.Canceled) {
		t.Errorf("Load error = %v, want context.Canceled", err)
	}
	if got := l.Stats().Hits; got != 0 {
		t.Errorf("Hits = %d, want 0", got)
	}
}

func TestLoaderDoesNotCacheFailures(t *testing.T) {
	src := newCountingSource()
	src.err = errors.New("network down")
	l := NewLoader(src)

	_, err := l.Load(context.Background(), "loan")
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("error = %v, want ErrLoad", err)
	}
	if !errors.Is(err, src.err) {
		t.Errorf("error = %v, want it to wrap the source error", err)
	}
	if _, ok := l.Cached("loan"); ok {
		t.Fatal("failed load must not be cached")
	}

	src.err = nil
	if _, err := l.Load(context.Background(), "loan"); err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Errorf("source called %d times, want 2", got)
	}
	if got := l.Stats().Failures; got != 1 {
		t.Errorf("Failures = %d, want 1", got)
	}
}

func TestLoaderCallerCancelLetsFetchFinish(t *testing.T) {
	src := newCountingSource()
	src.release = make(chan struct{})
	l := NewLoader(src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx, "account")
		done <- err
	}()

	<-src.started
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Load error = %v, want context.Canceled", err)
	}

	close(src.release)
	b := waitCached(t, l, "account")
	if b.Handle != "account-module" {
		t.Errorf("Handle = %v", b.Handle)
	}

	if _, err := l.Load(context.Background(), "account"); err != nil {
		t.Fatal(err)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source called %d times, want 1", got)
	}
}

func TestLoaderFetchTimeout(t *testing.T) {
	src := SourceFunc(func(ctx context.Context, id string) (*Bundle, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	l := NewLoader(src, WithFetchTimeout(10*time.Millisecond))

	_, err := l.Load(context.Background(), "slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestLoaderRejectsInvalidBundleRoutes(t *testing.T) {
	src := SourceFunc(func(ctx context.Context, id string) (*Bundle, error) {
		return &Bundle{Routes: routetable.New(
			routetable.Entry{Pattern: "**", Handler: routetable.StaticView{ViewID: "a"}},
			routetable.Entry{Pattern: "**", Handler: routetable.StaticView{ViewID: "b"}},
		)}, nil
	})
	l := NewLoader(src)

	_, err := l.Load(context.Background(), "bad")
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("error = %v, want ErrLoad", err)
	}
	if !errors.Is(err, routetable.ErrInvalid) {
		t.Errorf("error = %v, want routetable.ErrInvalid in chain", err)
	}
}

func TestLoaderRecoversSourcePanic(t *testing.T) {
	calls := 0
	src := SourceFunc(func(ctx context.Context, id string) (*Bundle, error) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return &Bundle{}, nil
	})
	l := NewLoader(src)

	if _, err := l.Load(context.Background(), "x"); !errors.Is(err, ErrLoad) {
		t.Fatalf("error = %v, want ErrLoad", err)
	}
	if _, err := l.Load(context.Background(), "x"); err != nil {
		t.Fatalf("retry after panic: %v", err)
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	fetched []string
	failed  []string
	hits    []string
}

func (o *recordingObserver) BundleFetched(id string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.failed = append(o.failed, id)
		return
	}
	o.fetched = append(o.fetched, id)
}

func (o *recordingObserver) BundleCacheHit(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits = append(o.hits, id)
}

func (o *recordingObserver) BundleJoined(string) {}

func TestLoaderObserver(t *testing.T) {
	obs := &recordingObserver{}
	fail := true
	src := SourceFunc(func(ctx context.Context, id string) (*Bundle, error) {
		if id == "loan" && fail {
			fail = false
			return nil, errors.New("nope")
		}
		return &Bundle{}, nil
	})
	l := NewLoader(src, WithObserver(obs))

	ctx := context.Background()
	l.Load(ctx, "account")
	l.Load(ctx, "account")
	l.Load(ctx, "loan")
	l.Load(ctx, "loan")

	if len(obs.fetched) != 2 || len(obs.failed) != 1 || len(obs.hits) != 1 {
		t.Errorf("fetched=%v failed=%v hits=%v", obs.fetched, obs.failed, obs.hits)
	}
}
