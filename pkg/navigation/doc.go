// Package navigation drives navigations against a route table.
//
// A Controller owns the single current navigation State. Each Navigate call
// runs one request through matching, redirects, wildcard fallback and lazy
// bundle loading, and ends in exactly one of Committed, Cancelled or Failed.
//
// Only the most recent request can commit. A request that arrives while
// another is pending supersedes it: the older request's State becomes
// Cancelled immediately, and when its bundle load eventually returns the
// result is dropped. The load itself still completes and fills the Loader's
// cache.
//
// A Failed navigation leaves the last committed location in place; Committed
// keeps returning it.
//
// # Scroll
//
// On commit the controller computes a ScrollInstruction:
//
//   - WithoutScroll: ScrollNone
//   - history navigation with restoration enabled and a recorded offset:
//     ScrollRestore
//   - a "#fragment" with anchor scrolling enabled: ScrollAnchor
//   - otherwise: ScrollTop
//
// Offsets are read from the Viewport just before a commit replaces the
// outgoing location and are kept in a scrollstore.Store keyed by path.
//
// # Usage
//
//	ctrl, err := navigation.New(routes, loader,
//	    navigation.WithRestoreScrollPosition(true),
//	    navigation.WithAnchorScrolling(true),
//	)
//	out := ctrl.Navigate(ctx, "/account/detail")
//	if out.Status == navigation.Committed {
//	    mount(out.View)
//	}
package navigation
