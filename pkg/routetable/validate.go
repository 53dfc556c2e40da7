package routetable

import (
	"fmt"
	"strings"

	lrerrors "github.com/vango-dev/lazyroute/internal/errors"
)

// ErrInvalid matches any route table validation failure via errors.Is.
var ErrInvalid = lrerrors.New(lrerrors.CodeInvalidRoute)

// ValidationErrorType categorizes validation errors.
type ValidationErrorType string

const (
	// ErrorMissingHandler indicates an entry with neither a handler nor children.
	ErrorMissingHandler ValidationErrorType = "MISSING_HANDLER"

	// ErrorMultipleHandlers indicates a configuration entry setting more than
	// one of redirectTo, viewId and loaderId.
	ErrorMultipleHandlers ValidationErrorType = "MULTIPLE_HANDLERS"

	// ErrorDuplicateWildcard indicates more than one "**" entry in one table.
	ErrorDuplicateWildcard ValidationErrorType = "DUPLICATE_WILDCARD"

	// ErrorInvalidPattern indicates a malformed pattern (empty segment,
	// embedded wildcard, unnamed parameter).
	ErrorInvalidPattern ValidationErrorType = "INVALID_PATTERN"

	// ErrorInvalidMatchMode indicates an unknown pathMatch value.
	ErrorInvalidMatchMode ValidationErrorType = "INVALID_MATCH_MODE"

	// ErrorUnexpectedChildren indicates children on a wildcard or redirect entry.
	ErrorUnexpectedChildren ValidationErrorType = "UNEXPECTED_CHILDREN"

	// WarnShadowingWildcard indicates a wildcard followed by other entries.
	WarnShadowingWildcard ValidationErrorType = "SHADOWING_WILDCARD"
)

// ValidationError represents a route validation error.
type ValidationError struct {
	// Type is the error category
	Type ValidationErrorType

	// Message is the human-readable error message
	Message string

	// Path locates the entry, e.g. "routes[1].children[0]"
	Path string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Type, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// MultiValidationError wraps multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d route validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the structural invariants of a table and all nested tables.
// It returns nil or an R004 error wrapping a *MultiValidationError.
func Validate(t *Table) error {
	var errs []ValidationError
	validateTable(t, "routes", &errs)
	return asError(errs)
}

// Lint reports problems that are legal but almost certainly unintended.
func Lint(t *Table) []ValidationError {
	var warns []ValidationError
	lintTable(t, "routes", &warns)
	return warns
}

func asError(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return lrerrors.New(lrerrors.CodeInvalidRoute).
		WithSuggestion("Fix the listed entries in the route configuration").
		Wrap(&MultiValidationError{Errors: errs})
}

func validateTable(t *Table, at string, errs *[]ValidationError) {
	wildcards := 0
	for i, e := range t.Entries() {
		where := fmt.Sprintf("%s[%d]", at, i)
		validateEntry(e, where, errs)
		if e.IsWildcard() {
			wildcards++
			if wildcards == 2 {
				*errs = append(*errs, ValidationError{
					Type:    ErrorDuplicateWildcard,
					Message: "a table may declare at most one \"**\" entry",
					Path:    where,
				})
			}
		}
		if e.Children.Len() > 0 {
			validateTable(e.Children, where+".children", errs)
		}
	}
}

func validateEntry(e Entry, where string, errs *[]ValidationError) {
	add := func(typ ValidationErrorType, format string, args ...any) {
		*errs = append(*errs, ValidationError{Type: typ, Message: fmt.Sprintf(format, args...), Path: where})
	}

	if e.Match != MatchExact && e.Match != MatchPrefix {
		add(ErrorInvalidMatchMode, "unknown match mode %d", int(e.Match))
	}

	if e.Handler == nil && (e.Children.Len() == 0 || e.Match == MatchExact) {
		add(ErrorMissingHandler, "entry %q needs a handler or prefix children", e.Pattern)
	}

	if e.IsWildcard() {
		if e.Children.Len() > 0 {
			add(ErrorUnexpectedChildren, "wildcard entry cannot have children")
		}
		return
	}

	if e.Children.Len() > 0 {
		switch e.Handler.(type) {
		case Redirect:
			add(ErrorUnexpectedChildren, "redirect entry %q cannot have children", e.Pattern)
		case LazyBundle:
			add(ErrorUnexpectedChildren, "lazy entry %q gets its children from the bundle manifest", e.Pattern)
		}
	}

	if strings.HasPrefix(e.Pattern, "/") {
		add(ErrorInvalidPattern, "pattern %q must not start with \"/\"", e.Pattern)
	}
	for _, seg := range e.Segments() {
		switch {
		case seg == "":
			add(ErrorInvalidPattern, "pattern %q contains an empty segment", e.Pattern)
		case strings.Contains(seg, WildcardPattern):
			add(ErrorInvalidPattern, "pattern %q embeds the wildcard; use \"**\" on its own", e.Pattern)
		case seg == ":":
			add(ErrorInvalidPattern, "pattern %q has an unnamed parameter", e.Pattern)
		}
	}
}

func lintTable(t *Table, at string, warns *[]ValidationError) {
	entries := t.Entries()
	for i, e := range entries {
		where := fmt.Sprintf("%s[%d]", at, i)
		if e.IsWildcard() && i < len(entries)-1 {
			*warns = append(*warns, ValidationError{
				Type:    WarnShadowingWildcard,
				Message: fmt.Sprintf("wildcard shadows %d later entries", len(entries)-1-i),
				Path:    where,
			})
		}
		if e.Children.Len() > 0 {
			lintTable(e.Children, where+".children", warns)
		}
	}
}
