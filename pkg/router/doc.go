// Package router resolves navigation paths against route tables.
//
// Matching walks a table's entries in declared order and stops at the first
// entry that accepts the path:
//
//   - exact entries accept only when the pattern consumes the whole remainder
//   - prefix entries consume the pattern and hand the remainder to their
//     children; without children they behave like exact entries, except for
//     lazy entries whose children arrive with the bundle
//   - the "**" entry accepts anything no earlier entry accepted
//
// Once a prefix entry has matched, its children decide the outcome. If they
// reject the remainder the whole match fails with a NoMatchError; later
// siblings are never tried.
//
// # Usage
//
//	result, err := router.Match(routes, "/account/detail")
//	if errors.Is(err, router.ErrNoMatch) {
//	    result, ok = router.Fallback(err)
//	}
//	// result.Handler, result.Remaining, result.Params
//
// Bundles contribute tables after loading; MatchWithin continues a match
// inside such a table so relative redirects and fallbacks keep working.
package router
