package routetable

import (
	"fmt"
	"strings"
)

// WildcardPattern is the catch-all pattern.
const WildcardPattern = "**"

// MatchMode selects how an entry's pattern is compared with the remaining path.
type MatchMode int

const (
	// MatchPrefix consumes the pattern and delegates the remainder to children.
	MatchPrefix MatchMode = iota
	// MatchExact requires the pattern to consume the whole remaining path.
	MatchExact
)

// String returns the configuration spelling of the mode.
func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "full"
	case MatchPrefix:
		return "prefix"
	default:
		return fmt.Sprintf("MatchMode(%d)", int(m))
	}
}

// HandlerKind identifies a handler variant.
type HandlerKind string

const (
	KindRedirect   HandlerKind = "redirect"
	KindStaticView HandlerKind = "view"
	KindLazyBundle HandlerKind = "lazy"
)

// Handler is what a matched entry resolves to. It is one of Redirect,
// StaticView or LazyBundle.
type Handler interface {
	Kind() HandlerKind
	String() string
	handler()
}

// Redirect sends the navigation to another path. A Target without a leading
// "/" is relative to the path consumed before the entry.
type Redirect struct {
	Target string
}

// StaticView mounts an eagerly available view.
type StaticView struct {
	ViewID string
}

// LazyBundle mounts a view whose bundle is fetched on first use.
type LazyBundle struct {
	LoaderID string
}

func (Redirect) Kind() HandlerKind   { return KindRedirect }
func (StaticView) Kind() HandlerKind { return KindStaticView }
func (LazyBundle) Kind() HandlerKind { return KindLazyBundle }

func (h Redirect) String() string   { return fmt.Sprintf("redirect(%q)", h.Target) }
func (h StaticView) String() string { return fmt.Sprintf("view(%s)", h.ViewID) }
func (h LazyBundle) String() string { return fmt.Sprintf("lazy(%s)", h.LoaderID) }

func (Redirect) handler()   {}
func (StaticView) handler() {}
func (LazyBundle) handler() {}

// Entry is one routing rule.
type Entry struct {
	// Pattern is matched segment-wise against the remaining path.
	Pattern string

	// Match selects exact or prefix semantics.
	Match MatchMode

	// Children is the nested table the remainder is delegated to.
	Children *Table

	// Handler is nil only for prefix entries that just group children.
	Handler Handler
}

// IsWildcard reports whether the entry is the catch-all entry.
func (e Entry) IsWildcard() bool {
	return e.Pattern == WildcardPattern
}

// Segments returns the pattern split into segments. The empty pattern has none.
func (e Entry) Segments() []string {
	p := strings.Trim(e.Pattern, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// String renders the entry for logs and CLI output.
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q", e.Pattern)
	if !e.IsWildcard() {
		b.WriteString(" ")
		b.WriteString(e.Match.String())
	}
	if e.Handler != nil {
		b.WriteString(" → ")
		b.WriteString(e.Handler.String())
	}
	if e.Children.Len() > 0 {
		fmt.Fprintf(&b, " [%d children]", e.Children.Len())
	}
	return b.String()
}

// Table is an ordered, immutable set of entries.
type Table struct {
	entries []Entry
}

// New creates a table from entries in evaluation order.
func New(entries ...Entry) *Table {
	t := &Table{entries: make([]Entry, len(entries))}
	copy(t.entries, entries)
	return t
}

// Entries returns the entries in evaluation order.
// The returned slice is a copy.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries. A nil table is empty.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// At returns the entry at index i.
func (t *Table) At(i int) Entry {
	return t.entries[i]
}

// Wildcard returns the table's wildcard entry, if any.
func (t *Table) Wildcard() (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	for _, e := range t.entries {
		if e.IsWildcard() {
			return e, true
		}
	}
	return Entry{}, false
}

// Walk visits every entry depth-first in declared order. base holds the
// pattern segments of the entry's ancestors. Returning false from fn skips
// the entry's children.
func (t *Table) Walk(fn func(base []string, e Entry) bool) {
	t.walk(nil, fn)
}

func (t *Table) walk(base []string, fn func(base []string, e Entry) bool) {
	if t == nil {
		return
	}
	for _, e := range t.entries {
		if !fn(base, e) {
			continue
		}
		if e.Children.Len() > 0 && !e.IsWildcard() {
			next := make([]string, 0, len(base)+2)
			next = append(next, base...)
			next = append(next, e.Segments()...)
			e.Children.walk(next, fn)
		}
	}
}
