package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	lrerrors "github.com/vango-dev/lazyroute/internal/errors"
	"github.com/vango-dev/lazyroute/pkg/bundle"
	"github.com/vango-dev/lazyroute/pkg/routepath"
	"github.com/vango-dev/lazyroute/pkg/router"
	"github.com/vango-dev/lazyroute/pkg/routetable"
	"github.com/vango-dev/lazyroute/pkg/scrollstore"
)

// Loader resolves lazy bundles. *bundle.Loader implements it.
type Loader interface {
	Load(ctx context.Context, loaderID string) (*bundle.Bundle, error)
}

var (
	// ErrSuperseded matches the error of a navigation replaced by a newer one.
	ErrSuperseded = lrerrors.New(lrerrors.CodeSuperseded)

	// ErrTooManyRedirects matches redirect chains longer than MaxRedirects.
	ErrTooManyRedirects = lrerrors.New(lrerrors.CodeTooManyRedirect)

	// ErrNoHistory is returned by Back and Forward at either end of history.
	ErrNoHistory = errors.New("navigation: no history entry in that direction")
)

// Match kinds reported in Outcome.MatchedBy.
const (
	MatchedByRoute    = "route"
	MatchedByWildcard = "wildcard"
	MatchedByFallback = "fallback"
)

// Controller runs navigations against a root route table. It is safe for
// concurrent use.
type Controller struct {
	root   *routetable.Table
	loader Loader
	opts   Options
	hooks  Hooks

	mu       sync.Mutex
	seq      uint64
	history  history
	lastPath string

	state     atomic.Pointer[State]
	committed atomic.Pointer[State]
}

// New validates root and its statically reachable redirects and returns a
// controller in the Idle state. loader may be nil for tables without lazy
// entries.
func New(root *routetable.Table, loader Loader, opts ...Option) (*Controller, error) {
	if err := routetable.Validate(root); err != nil {
		return nil, err
	}
	if err := router.ValidateRedirects(root); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = defaultOptions().Logger
	}
	if o.ScrollStore == nil {
		o.ScrollStore = scrollstore.NewMemory()
	}
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = DefaultMaxRedirects
	}

	for _, w := range routetable.Lint(root) {
		o.Logger.Warn("route table warning", "type", w.Type, "path", w.Path, "message", w.Message)
	}

	c := &Controller{
		root:    root,
		loader:  loader,
		opts:    o,
		hooks:   ChainHooks(o.Hooks...),
		history: history{index: -1},
	}
	c.state.Store(&State{})
	return c, nil
}

// Routes returns the root table.
func (c *Controller) Routes() *routetable.Table {
	return c.root
}

// State returns the current navigation state.
func (c *Controller) State() State {
	return *c.state.Load()
}

// Committed returns the last committed state, if any navigation committed.
func (c *Controller) Committed() (State, bool) {
	s := c.committed.Load()
	if s == nil {
		return State{}, false
	}
	return *s, true
}

// History returns a copy of the history entries and the current index.
// The index is -1 before the first commit.
func (c *Controller) History() ([]string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.history.entries...), c.history.index
}

// Navigate resolves path and, unless superseded, publishes the outcome as
// the new State. It blocks until the navigation reaches a final status.
func (c *Controller) Navigate(ctx context.Context, path string, opts ...NavigateOption) Outcome {
	no := NavigateOptions{Scroll: true}
	for _, opt := range opts {
		opt(&no)
	}
	return c.run(ctx, path, TriggerImperative, no, -1)
}

// Back navigates to the previous history entry.
func (c *Controller) Back(ctx context.Context) Outcome {
	return c.traverse(ctx, -1)
}

// Forward navigates to the next history entry.
func (c *Controller) Forward(ctx context.Context) Outcome {
	return c.traverse(ctx, 1)
}

func (c *Controller) traverse(ctx context.Context, delta int) Outcome {
	c.mu.Lock()
	idx := c.history.index + delta
	target, ok := c.history.at(idx)
	c.mu.Unlock()
	if !ok {
		return Outcome{Status: Failed, Err: ErrNoHistory}
	}
	return c.run(ctx, target, TriggerPopstate, NavigateOptions{Scroll: true}, idx)
}

// resolution accumulates what a navigation found on its way to a view.
type resolution struct {
	loc       routepath.Location
	view      *View
	redirects int
	matchedBy string
}

func (c *Controller) run(ctx context.Context, path string, trigger Trigger, no NavigateOptions, popIndex int) Outcome {
	start := time.Now()

	c.mu.Lock()
	c.seq++
	id := c.seq
	if prev := c.state.Load(); prev.Status == Pending {
		cancelled := *prev
		cancelled.Status = Cancelled
		cancelled.Err = superseded(prev.Path)
		c.publish(&cancelled)
		c.opts.Logger.Debug("navigation superseded", "id", prev.ID, "path", prev.Path, "by", id)
	}
	c.publish(&State{ID: id, Path: path, Status: Pending})
	c.mu.Unlock()

	req := Request{ID: id, Path: path, Trigger: trigger, Replace: no.Replace}
	ctx = c.hooks.OnStart(ctx, req)

	var out Outcome
	r, err := c.resolve(ctx, id, path)
	if err != nil {
		out = c.fail(ctx, req, r, err)
	} else {
		out = c.commit(ctx, req, no, popIndex, r)
	}
	out.ID = id
	out.Duration = time.Since(start)

	c.hooks.OnFinish(ctx, out)
	return out
}

func (c *Controller) resolve(ctx context.Context, id uint64, path string) (resolution, error) {
	var r resolution
	if path == "" {
		path = "/"
	}
	loc, err := routepath.Parse(path)
	if err != nil {
		return r, lrerrors.New(lrerrors.CodeInvalidPath).WithPath(path).Wrap(err)
	}

	chain := []string{loc.Path}
	for {
		r.loc = loc
		res, err := router.Match(c.root, loc.Path)
		res, err = c.settle(&r, res, err)
		if err != nil {
			return r, err
		}

		next, done, err := c.descend(ctx, id, res, &r)
		if err != nil || done {
			return r, err
		}

		r.redirects++
		chain = append(chain, next.Path)
		if r.redirects > c.opts.MaxRedirects {
			return r, lrerrors.New(lrerrors.CodeTooManyRedirect).
				WithPath(chain[0]).
				WithDetail(fmt.Sprintf("Followed %d redirects; the limit is %d.", r.redirects, c.opts.MaxRedirects))
		}
		for _, p := range chain[:len(chain)-1] {
			if p == next.Path {
				return r, router.RedirectCycleError(chain)
			}
		}
		c.opts.Logger.Debug("following redirect", "id", id, "from", loc.Path, "to", next.String())
		loc = next
	}
}

// settle applies the wildcard policy to a match: a NoMatchError becomes a
// forced match against the nearest enclosing wildcard.
func (c *Controller) settle(r *resolution, res *router.MatchResult, err error) (*router.MatchResult, error) {
	if err != nil {
		fb, ok := router.Fallback(err)
		if !ok {
			return nil, err
		}
		r.matchedBy = MatchedByFallback
		c.opts.Logger.Info("no route matched",
			"path", r.loc.Path,
			"matched_by", MatchedByFallback,
			"wildcard_base", fb.BasePath(),
		)
		return fb, nil
	}
	if res.Wildcard {
		r.matchedBy = MatchedByWildcard
		c.opts.Logger.Debug("route matched", "path", r.loc.Path, "matched_by", MatchedByWildcard)
	} else {
		r.matchedBy = MatchedByRoute
	}
	return res, nil
}

// descend follows res through lazy bundles until it reaches a view or a
// redirect. It reports done once a view is found; otherwise next is the
// redirect target.
func (c *Controller) descend(ctx context.Context, id uint64, res *router.MatchResult, r *resolution) (next routepath.Location, done bool, err error) {
	var current *bundle.Bundle
	// mounts holds "loaderID path" for every bundle entered on this match.
	mounts := make(map[string]bool)
	for {
		switch h := res.Handler.(type) {
		case routetable.Redirect:
			target, err := router.ResolveTarget(res)
			return target, false, err

		case routetable.StaticView:
			r.view = &View{ID: h.ViewID, Bundle: current, Params: res.Params}
			return next, true, nil

		case routetable.LazyBundle:
			if c.loader == nil {
				return next, false, lrerrors.New(lrerrors.CodeBundleLoad).
					WithPath(h.LoaderID).
					Wrap(errors.New("no bundle loader configured"))
			}
			mount := h.LoaderID + " " + res.ConsumedPath()
			if mounts[mount] {
				return next, false, bundleCycleError(h.LoaderID, res.ConsumedPath())
			}
			mounts[mount] = true
			if len(mounts) > c.opts.MaxRedirects {
				return next, false, lrerrors.New(lrerrors.CodeTooManyRedirect).
					WithPath(r.loc.Path).
					WithDetail(fmt.Sprintf("Entered %d nested bundles; the limit is %d.", len(mounts), c.opts.MaxRedirects))
			}

			b, err := c.loader.Load(ctx, h.LoaderID)
			if !c.isCurrent(id) {
				return next, false, superseded(r.loc.Path)
			}
			if err != nil {
				return next, false, err
			}
			current = b

			if b.Routes.Len() == 0 && len(res.Remaining) == 0 {
				r.view = &View{ID: b.ID, Bundle: b, Params: res.Params}
				return next, true, nil
			}
			res, err = router.MatchWithin(b.Routes, res)
			res, err = c.settle(r, res, err)
			if err != nil {
				return next, false, err
			}

		default:
			return next, false, lrerrors.New(lrerrors.CodeInvalidRoute).
				WithPath(res.ConsumedPath()).
				Wrap(fmt.Errorf("entry %s has no handler", res.Entry))
		}
	}
}

func (c *Controller) commit(ctx context.Context, req Request, no NavigateOptions, popIndex int, r resolution) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != req.ID {
		return cancelledOutcome(req, r)
	}

	// The outgoing offset is recorded before the restore lookup so that a
	// navigation back to the same path sees it.
	if outgoing := c.lastPath; outgoing != "" && c.opts.Viewport != nil {
		if err := c.opts.ScrollStore.Save(ctx, outgoing, c.opts.Viewport.Offset()); err != nil {
			c.opts.Logger.Warn("failed to record scroll offset", "path", outgoing, "error", err)
		}
	}
	scroll := c.scrollFor(ctx, req.Trigger, no, r.loc)

	st := &State{
		ID:        req.ID,
		Path:      r.loc.String(),
		Status:    Committed,
		Scroll:    scroll,
		View:      r.view,
		Redirects: r.redirects,
	}
	c.publish(st)
	c.committed.Store(st)
	c.lastPath = r.loc.Path
	c.history.record(st.Path, req.Trigger == TriggerPopstate, no.Replace, popIndex)

	c.opts.Logger.Info("navigation committed",
		"id", req.ID,
		"path", st.Path,
		"view", r.view.ID,
		"redirects", r.redirects,
		"matched_by", r.matchedBy,
		"scroll", scroll.Kind,
	)

	return Outcome{
		Status:    Committed,
		Path:      st.Path,
		View:      r.view,
		Scroll:    scroll,
		Redirects: r.redirects,
		MatchedBy: r.matchedBy,
	}
}

func (c *Controller) fail(ctx context.Context, req Request, r resolution, err error) Outcome {
	if errors.Is(err, ErrSuperseded) {
		return cancelledOutcome(req, r)
	}

	status := Failed
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		status = Cancelled
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != req.ID {
		return cancelledOutcome(req, r)
	}
	c.publish(&State{
		ID:        req.ID,
		Path:      req.Path,
		Status:    status,
		Redirects: r.redirects,
		Err:       err,
	})

	if status == Failed {
		c.opts.Logger.Warn("navigation failed", "id", req.ID, "path", req.Path, "error", err)
	} else {
		c.opts.Logger.Debug("navigation cancelled", "id", req.ID, "path", req.Path, "error", err)
	}

	return Outcome{
		Status:    status,
		Path:      req.Path,
		Redirects: r.redirects,
		MatchedBy: r.matchedBy,
		Err:       err,
	}
}

func (c *Controller) scrollFor(ctx context.Context, trigger Trigger, no NavigateOptions, loc routepath.Location) ScrollInstruction {
	if !no.Scroll {
		return ScrollInstruction{Kind: ScrollNone}
	}
	if trigger == TriggerPopstate && c.opts.RestoreScrollPosition {
		pos, ok, err := c.opts.ScrollStore.Lookup(ctx, loc.Path)
		if err != nil {
			c.opts.Logger.Warn("failed to read scroll offset", "path", loc.Path, "error", err)
		}
		if ok {
			return ScrollInstruction{Kind: ScrollRestore, Position: pos}
		}
	}
	if loc.Fragment != "" && c.opts.AnchorScrolling {
		return ScrollInstruction{Kind: ScrollAnchor, Anchor: loc.Fragment}
	}
	return ScrollInstruction{Kind: ScrollTop}
}

func (c *Controller) isCurrent(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq == id
}

// publish must be called with c.mu held.
func (c *Controller) publish(s *State) {
	c.state.Store(s)
	if c.opts.OnState != nil {
		c.opts.OnState(*s)
	}
}

// bundleCycleError reports a bundle whose routes mount loaderID again at the
// same path.
func bundleCycleError(loaderID, path string) error {
	return lrerrors.New(lrerrors.CodeRedirectCycle).
		WithPath(path).
		WithDetail(fmt.Sprintf("Bundle %q is mounted again at %s without consuming a segment.", loaderID, path)).
		WithSuggestion("Give the nested lazy entry a non-empty path or point it at another bundle")
}

func superseded(path string) error {
	return lrerrors.New(lrerrors.CodeSuperseded).WithPath(path)
}

func cancelledOutcome(req Request, r resolution) Outcome {
	return Outcome{
		Status:    Cancelled,
		Path:      req.Path,
		Redirects: r.redirects,
		MatchedBy: r.matchedBy,
		Err:       superseded(req.Path),
	}
}
