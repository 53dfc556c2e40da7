package routetable

import (
	"encoding/json"
	"fmt"
)

// Config is the serialized form of an entry, as found in lazyroute.json and
// in bundle manifests.
//
//	{"path": "account", "loaderId": "account"}
//	{"path": "", "pathMatch": "full", "viewId": "dashboard"}
//	{"path": "**", "redirectTo": ""}
type Config struct {
	Path       string   `json:"path"`
	PathMatch  string   `json:"pathMatch,omitempty"`
	RedirectTo *string  `json:"redirectTo,omitempty"`
	ViewID     string   `json:"viewId,omitempty"`
	LoaderID   string   `json:"loaderId,omitempty"`
	Children   []Config `json:"children,omitempty"`
}

// ParseMatchMode parses a pathMatch value. The empty string means prefix.
func ParseMatchMode(s string) (MatchMode, error) {
	switch s {
	case "", "prefix":
		return MatchPrefix, nil
	case "full", "exact":
		return MatchExact, nil
	default:
		return MatchPrefix, fmt.Errorf("unknown pathMatch %q", s)
	}
}

// Build converts configuration entries into a validated table.
func Build(configs []Config) (*Table, error) {
	var errs []ValidationError
	t := build(configs, "routes", &errs)
	if err := asError(errs); err != nil {
		return nil, err
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Parse decodes a JSON array of entries and builds the table.
func Parse(data []byte) (*Table, error) {
	var configs []Config
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("decode routes: %w", err)
	}
	return Build(configs)
}

func build(configs []Config, at string, errs *[]ValidationError) *Table {
	entries := make([]Entry, 0, len(configs))
	for i, c := range configs {
		where := fmt.Sprintf("%s[%d]", at, i)

		mode, err := ParseMatchMode(c.PathMatch)
		if err != nil {
			*errs = append(*errs, ValidationError{Type: ErrorInvalidMatchMode, Message: err.Error(), Path: where})
		}

		e := Entry{Pattern: c.Path, Match: mode}

		set := 0
		if c.RedirectTo != nil {
			set++
			e.Handler = Redirect{Target: *c.RedirectTo}
		}
		if c.ViewID != "" {
			set++
			e.Handler = StaticView{ViewID: c.ViewID}
		}
		if c.LoaderID != "" {
			set++
			e.Handler = LazyBundle{LoaderID: c.LoaderID}
		}
		if set > 1 {
			*errs = append(*errs, ValidationError{
				Type:    ErrorMultipleHandlers,
				Message: fmt.Sprintf("entry %q sets %d of redirectTo, viewId, loaderId", c.Path, set),
				Path:    where,
			})
		}

		if len(c.Children) > 0 {
			e.Children = build(c.Children, where+".children", errs)
		}
		entries = append(entries, e)
	}
	return New(entries...)
}

// ToConfig converts a table back into its serialized form.
func ToConfig(t *Table) []Config {
	entries := t.Entries()
	out := make([]Config, 0, len(entries))
	for _, e := range entries {
		c := Config{Path: e.Pattern}
		if e.Match == MatchExact {
			c.PathMatch = "full"
		}
		switch h := e.Handler.(type) {
		case Redirect:
			target := h.Target
			c.RedirectTo = &target
		case StaticView:
			c.ViewID = h.ViewID
		case LazyBundle:
			c.LoaderID = h.LoaderID
		}
		if e.Children.Len() > 0 {
			c.Children = ToConfig(e.Children)
		}
		out = append(out, c)
	}
	return out
}
