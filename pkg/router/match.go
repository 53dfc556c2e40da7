package router

import (
	"errors"
	"strings"

	lrerrors "github.com/vango-dev/lazyroute/internal/errors"
	"github.com/vango-dev/lazyroute/pkg/routepath"
	"github.com/vango-dev/lazyroute/pkg/routetable"
)

// ErrNoMatch matches any NoMatchError via errors.Is.
var ErrNoMatch = lrerrors.New(lrerrors.CodeNoMatch)

// Scope is a table visited during matching, with the path consumed before it.
type Scope struct {
	Table *routetable.Table
	Base  []string
}

// MatchResult describes the entry that accepted a path.
type MatchResult struct {
	// Entry is the matched entry.
	Entry routetable.Entry

	// Handler is the matched entry's handler.
	Handler routetable.Handler

	// Base holds the segments consumed before the matched entry's table.
	Base []string

	// Consumed holds every segment consumed, including the entry's own.
	Consumed []string

	// Remaining holds unconsumed segments. It is empty for terminal matches
	// and non-empty only for lazy prefix entries.
	Remaining []string

	// Params holds values captured by ":name" segments.
	Params map[string]string

	// Ancestors are the grouping entries the match passed through.
	Ancestors []routetable.Entry

	// Scopes are the tables visited, outermost first.
	Scopes []Scope

	// Wildcard is set when the "**" entry accepted the path.
	Wildcard bool

	// Forced is set when the result came from Fallback rather than Match.
	Forced bool
}

// BasePath returns Base as a canonical path.
func (r *MatchResult) BasePath() string { return routepath.FromSegments(r.Base) }

// ConsumedPath returns Consumed as a canonical path.
func (r *MatchResult) ConsumedPath() string { return routepath.FromSegments(r.Consumed) }

// RemainingPath returns Remaining as a canonical path, or "" if nothing remains.
func (r *MatchResult) RemainingPath() string {
	if len(r.Remaining) == 0 {
		return ""
	}
	return routepath.FromSegments(r.Remaining)
}

// NoMatchError reports a path no entry accepted. Scopes lists the tables the
// matcher visited, outermost first, so callers can apply a wildcard policy.
type NoMatchError struct {
	Path   string
	Scopes []Scope
	cause  *lrerrors.RouteError
}

func newNoMatch(path []string, scopes []Scope) *NoMatchError {
	p := routepath.FromSegments(path)
	return &NoMatchError{
		Path:   p,
		Scopes: scopes,
		cause:  lrerrors.New(lrerrors.CodeNoMatch).WithPath(p),
	}
}

func (e *NoMatchError) Error() string { return e.cause.Error() }

// Unwrap exposes the coded error so errors.Is(err, ErrNoMatch) holds.
func (e *NoMatchError) Unwrap() error { return e.cause }

// Match finds the first entry of table accepting path.
func Match(table *routetable.Table, path string) (*MatchResult, error) {
	canon, err := routepath.CanonicalizePath(path)
	if err != nil {
		return nil, lrerrors.New(lrerrors.CodeInvalidPath).WithPath(path).Wrap(err)
	}
	segs := routepath.Segments(canon.Path)
	m := matcher{full: segs}
	return m.matchTable(table, nil, segs, nil, nil, nil)
}

// MatchWithin continues parent's match inside table, typically the routes a
// lazy bundle contributed. parent's remainder is matched with parent's
// consumed path as base; scopes and params carry over.
func MatchWithin(table *routetable.Table, parent *MatchResult) (*MatchResult, error) {
	full := append(append([]string{}, parent.Consumed...), parent.Remaining...)
	m := matcher{full: full}
	ancestors := append(append([]routetable.Entry{}, parent.Ancestors...), parent.Entry)
	return m.matchTable(table, parent.Consumed, parent.Remaining, copyParams(parent.Params), ancestors, parent.Scopes)
}

// Fallback turns a NoMatchError into a forced match against the nearest
// enclosing wildcard, innermost table first.
func Fallback(err error) (*MatchResult, bool) {
	var nm *NoMatchError
	if !errors.As(err, &nm) {
		return nil, false
	}
	full := routepath.Segments(nm.Path)
	for i := len(nm.Scopes) - 1; i >= 0; i-- {
		s := nm.Scopes[i]
		w, ok := s.Table.Wildcard()
		if !ok {
			continue
		}
		return &MatchResult{
			Entry:     w,
			Handler:   w.Handler,
			Base:      s.Base,
			Consumed:  full,
			Params:    map[string]string{},
			Scopes:    nm.Scopes[:i+1],
			Wildcard:  true,
			Forced:    true,
		}, true
	}
	return nil, false
}

type matcher struct {
	full []string
}

func (m matcher) matchTable(
	table *routetable.Table,
	base, segs []string,
	params map[string]string,
	ancestors []routetable.Entry,
	scopes []Scope,
) (*MatchResult, error) {
	scopes = append(append([]Scope{}, scopes...), Scope{Table: table, Base: base})

	for _, e := range table.Entries() {
		if e.IsWildcard() {
			return m.result(e, base, segs, nil, params, ancestors, scopes, true), nil
		}

		n, bound, ok := matchPattern(e.Segments(), segs)
		if !ok {
			continue
		}
		rest := segs[n:]
		merged := mergeParams(params, bound)

		switch {
		case e.Match == routetable.MatchPrefix && e.Children.Len() > 0:
			consumed := concat(base, segs[:n])
			nested := append(append([]routetable.Entry{}, ancestors...), e)
			return m.matchTable(e.Children, consumed, rest, merged, nested, scopes)

		case e.Match == routetable.MatchPrefix && isLazy(e.Handler):
			return m.result(e, base, segs[:n], rest, merged, ancestors, scopes, false), nil

		default:
			if len(rest) != 0 {
				continue
			}
			return m.result(e, base, segs[:n], nil, merged, ancestors, scopes, false), nil
		}
	}

	return nil, newNoMatch(m.full, scopes)
}

func (m matcher) result(
	e routetable.Entry,
	base, own, rest []string,
	params map[string]string,
	ancestors []routetable.Entry,
	scopes []Scope,
	wildcard bool,
) *MatchResult {
	if params == nil {
		params = map[string]string{}
	}
	return &MatchResult{
		Entry:     e,
		Handler:   e.Handler,
		Base:      base,
		Consumed:  concat(base, own),
		Remaining: rest,
		Params:    params,
		Ancestors: ancestors,
		Scopes:    scopes,
		Wildcard:  wildcard,
	}
}

// matchPattern compares pattern segments with the leading path segments and
// reports how many segments were consumed.
func matchPattern(pattern, segs []string) (int, map[string]string, bool) {
	if len(pattern) > len(segs) {
		return 0, nil, false
	}
	var bound map[string]string
	for i, p := range pattern {
		decoded, err := routepath.DecodeSegment(segs[i])
		if err != nil {
			return 0, nil, false
		}
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if bound == nil {
				bound = make(map[string]string)
			}
			bound[name] = decoded
			continue
		}
		if p != decoded {
			return 0, nil, false
		}
	}
	return len(pattern), bound, true
}

func isLazy(h routetable.Handler) bool {
	_, ok := h.(routetable.LazyBundle)
	return ok
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func mergeParams(a, b map[string]string) map[string]string {
	if len(b) == 0 {
		return a
	}
	out := copyParams(a)
	for k, v := range b {
		out[k] = v
	}
	return out
}

func copyParams(p map[string]string) map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
