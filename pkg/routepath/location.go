package routepath

import "strings"

// Location is a parsed navigation target.
type Location struct {
	// Path is the canonical path used for matching.
	Path string

	// Query is carried along but never interpreted.
	Query string

	// Fragment is the in-page anchor, if any.
	Fragment string
}

// Parse canonicalizes and validates a navigation target.
//
// Navigation targets MUST be relative paths:
//   - MUST start with "/"
//   - MUST NOT be a full URL (no "http://", "https://", "//")
func Parse(input string) (Location, error) {
	if strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "//") {
		return Location{}, ErrInvalidPath
	}
	if !strings.HasPrefix(input, "/") {
		return Location{}, ErrInvalidPath
	}

	result, err := CanonicalizePath(input)
	if err != nil {
		return Location{}, err
	}
	return Location{Path: result.Path, Query: result.Query, Fragment: result.Fragment}, nil
}

// String rebuilds the location including query and fragment.
func (l Location) String() string {
	s := l.Path
	if s == "" {
		s = "/"
	}
	if l.Query != "" {
		s += "?" + l.Query
	}
	if l.Fragment != "" {
		s += "#" + l.Fragment
	}
	return s
}

// Resolve resolves a redirect target against the path that was consumed
// before the redirecting entry. Targets with a leading "/" are absolute.
// Relative targets are appended to base, so "" resolves to base itself.
//
//	Resolve("/account", "")       → "/account"
//	Resolve("/account", "detail") → "/account/detail"
//	Resolve("/account", "/loan")  → "/loan"
func Resolve(base, target string) (Location, error) {
	if strings.HasPrefix(target, "/") {
		return Parse(target)
	}
	if base == "" {
		base = "/"
	}
	joined := strings.TrimSuffix(base, "/") + "/" + target
	return Parse(joined)
}
