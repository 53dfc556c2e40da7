package navigation

import "context"

// Hooks observe navigations. OnStart may return a derived context that is
// used for the rest of the navigation and passed to OnFinish.
type Hooks interface {
	OnStart(ctx context.Context, req Request) context.Context
	OnFinish(ctx context.Context, out Outcome)
}

// HookFuncs adapts functions to Hooks. Nil fields are skipped.
type HookFuncs struct {
	Start  func(ctx context.Context, req Request) context.Context
	Finish func(ctx context.Context, out Outcome)
}

// OnStart implements Hooks.
func (h HookFuncs) OnStart(ctx context.Context, req Request) context.Context {
	if h.Start == nil {
		return ctx
	}
	return h.Start(ctx, req)
}

// OnFinish implements Hooks.
func (h HookFuncs) OnFinish(ctx context.Context, out Outcome) {
	if h.Finish != nil {
		h.Finish(ctx, out)
	}
}

type chain []Hooks

// ChainHooks combines hooks. OnStart runs in order and OnFinish in reverse,
// so the first hook wraps the others.
func ChainHooks(hooks ...Hooks) Hooks {
	return chain(hooks)
}

func (c chain) OnStart(ctx context.Context, req Request) context.Context {
	for _, h := range c {
		ctx = h.OnStart(ctx, req)
	}
	return ctx
}

func (c chain) OnFinish(ctx context.Context, out Outcome) {
	for i := len(c) - 1; i >= 0; i-- {
		c[i].OnFinish(ctx, out)
	}
}
