// Package routetable defines the immutable route tables consulted by the matcher.
//
// A Table is an ordered list of entries. Each entry maps a path pattern to a
// handler and may delegate the rest of the path to a nested table:
//
//	routes := routetable.New(
//	    routetable.Entry{Pattern: "", Match: routetable.MatchExact, Handler: routetable.LazyBundle{LoaderID: "dashboard"}},
//	    routetable.Entry{Pattern: "account", Handler: routetable.LazyBundle{LoaderID: "account"}},
//	    routetable.Entry{Pattern: "**", Handler: routetable.Redirect{Target: ""}},
//	)
//
// # Patterns
//
//	""          → the empty remainder (root of the table)
//	"account"   → one literal segment
//	"a/b"       → several literal segments
//	":id"       → any single segment, captured as a parameter
//	"**"        → wildcard, matches anything not matched by earlier entries
//
// # Ordering
//
// Declared order is evaluation order. Tables are never re-sorted, so a
// wildcard declared before other entries shadows them; Lint reports this.
//
// Tables are built once at startup, either directly or from JSON via Build,
// and are read-only afterwards.
package routetable
