// Package errors provides structured, actionable error messages for lazyroute.
//
// The errors package implements a coded error system that:
//   - Identifies every failure by a stable code (e.g., "R002")
//   - Explains what went wrong in plain language
//   - Points at the offending location in a configuration file when known
//   - Suggests how to fix configuration mistakes
//
// # Error Categories
//
// Errors are organized into categories:
//   - routing: Path matching failures (no route, redirect cycles)
//   - bundle: Lazy bundle fetch failures (transient, retried)
//   - config: Route table and configuration file problems
//   - navigation: Invalid navigation requests
//
// # Matching
//
// Two RouteErrors are considered equal by errors.Is when their codes match,
// so package-level sentinels can be compared against wrapped instances:
//
//	var ErrNoMatch = errors.New(errors.CodeNoMatch)
//
//	if stderrors.Is(err, router.ErrNoMatch) { ... }
//
// # Usage
//
//	err := errors.New(errors.CodeRedirectCycle).
//	    WithPath("/a").
//	    WithSuggestion("Point one of the redirects at a view or bundle route")
//
//	fmt.Println(err.Format())
package errors
