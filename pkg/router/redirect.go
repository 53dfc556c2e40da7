package router

import (
	"fmt"
	"strings"

	lrerrors "github.com/vango-dev/lazyroute/internal/errors"
	"github.com/vango-dev/lazyroute/pkg/routepath"
	"github.com/vango-dev/lazyroute/pkg/routetable"
)

// ErrRedirectCycle matches any redirect cycle error via errors.Is.
var ErrRedirectCycle = lrerrors.New(lrerrors.CodeRedirectCycle)

// maxStaticChain bounds static redirect following independently of cycles.
const maxStaticChain = 64

// RedirectCycleError builds the error for a chain that revisited its last
// element.
func RedirectCycleError(chain []string) error {
	return lrerrors.New(lrerrors.CodeRedirectCycle).
		WithPath(chain[len(chain)-1]).
		WithDetail("Redirect chain: " + strings.Join(chain, " → ")).
		WithSuggestion("Point one of the redirects at a view or bundle route")
}

// ResolveTarget resolves a redirect handler against the match that produced
// it. Relative targets are resolved against the consumed path before the
// redirecting entry.
func ResolveTarget(res *MatchResult) (routepath.Location, error) {
	r, ok := res.Handler.(routetable.Redirect)
	if !ok {
		return routepath.Location{}, fmt.Errorf("handler %v is not a redirect", res.Handler)
	}
	loc, err := routepath.Resolve(res.BasePath(), r.Target)
	if err != nil {
		return routepath.Location{}, lrerrors.New(lrerrors.CodeInvalidPath).WithPath(r.Target).Wrap(err)
	}
	return loc, nil
}

// ValidateRedirects follows every statically reachable redirect in table and
// reports the first cycle found. Chains ending in a lazy entry stop there,
// since their continuation is only known after the bundle loads.
func ValidateRedirects(table *routetable.Table) error {
	var firstErr error
	table.Walk(func(base []string, e routetable.Entry) bool {
		if firstErr != nil {
			return false
		}
		r, ok := e.Handler.(routetable.Redirect)
		if !ok {
			return true
		}

		var chain []string
		if !e.IsWildcard() {
			segs := e.Segments()
			for _, s := range segs {
				if strings.HasPrefix(s, ":") {
					return true
				}
			}
			chain = append(chain, routepath.FromSegments(concat(base, segs)))
		}

		loc, err := routepath.Resolve(routepath.FromSegments(base), r.Target)
		if err != nil {
			firstErr = lrerrors.New(lrerrors.CodeInvalidRoute).WithPath(r.Target).Wrap(err)
			return false
		}
		firstErr = followStatic(table, append(chain, loc.Path))
		return true
	})
	return firstErr
}

func followStatic(table *routetable.Table, chain []string) error {
	for len(chain) < maxStaticChain {
		current := chain[len(chain)-1]
		if seen(chain[:len(chain)-1], current) {
			return RedirectCycleError(chain)
		}

		res, err := Match(table, current)
		if err != nil {
			var ok bool
			if res, ok = Fallback(err); !ok {
				return nil
			}
		}
		if _, ok := res.Handler.(routetable.Redirect); !ok {
			return nil
		}
		next, err := ResolveTarget(res)
		if err != nil {
			return err
		}
		chain = append(chain, next.Path)
	}
	return lrerrors.New(lrerrors.CodeTooManyRedirect).WithPath(chain[0])
}

func seen(chain []string, p string) bool {
	for _, c := range chain {
		if c == p {
			return true
		}
	}
	return false
}
