package navigation

import (
	"fmt"
	"time"

	"github.com/vango-dev/lazyroute/pkg/bundle"
	"github.com/vango-dev/lazyroute/pkg/scrollstore"
)

// Status is the lifecycle stage of a navigation.
type Status int

const (
	// Idle is the status before the first navigation.
	Idle Status = iota
	// Pending means the request is being resolved.
	Pending
	// Committed means the request resolved and its view is current.
	Committed
	// Cancelled means a newer request or the caller's context ended it.
	Cancelled
	// Failed means matching or loading failed.
	Failed
)

var statusNames = map[Status]string{
	Idle:      "idle",
	Pending:   "pending",
	Committed: "committed",
	Cancelled: "cancelled",
	Failed:    "failed",
}

// String returns the lowercase status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ScrollKind selects what the view layer should do with the viewport.
type ScrollKind int

const (
	// ScrollNone leaves the viewport alone.
	ScrollNone ScrollKind = iota
	// ScrollTop scrolls to the top of the page.
	ScrollTop
	// ScrollRestore scrolls to a previously recorded offset.
	ScrollRestore
	// ScrollAnchor scrolls the element with the anchor's id into view.
	ScrollAnchor
)

func (k ScrollKind) String() string {
	switch k {
	case ScrollNone:
		return "none"
	case ScrollTop:
		return "top"
	case ScrollRestore:
		return "restore"
	case ScrollAnchor:
		return "anchor"
	}
	return fmt.Sprintf("ScrollKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k ScrollKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ScrollInstruction is issued with every commit.
type ScrollInstruction struct {
	Kind     ScrollKind           `json:"kind"`
	Position scrollstore.Position `json:"position"`
	Anchor   string               `json:"anchor,omitempty"`
}

// View is the mount token for a committed navigation.
type View struct {
	// ID is the static view ID, or the bundle ID when the bundle itself is
	// the view.
	ID string

	// Bundle is the innermost bundle the view came from, if any.
	Bundle *bundle.Bundle

	// Params holds values captured by ":name" pattern segments.
	Params map[string]string
}

// State is the controller's current navigation. Values are never modified
// after publication; every transition publishes a new one.
type State struct {
	// ID is the request sequence number.
	ID uint64

	// Path is the requested location while pending and the resolved
	// location once committed.
	Path string

	Status Status
	Scroll ScrollInstruction
	View   *View

	// Redirects is the number of redirects followed.
	Redirects int

	// Err is set for Failed and Cancelled states.
	Err error
}

// Trigger tells how a navigation was started.
type Trigger string

const (
	// TriggerImperative is a Navigate call.
	TriggerImperative Trigger = "imperative"
	// TriggerPopstate is a Back or Forward call.
	TriggerPopstate Trigger = "popstate"
)

// Request describes a navigation as it starts.
type Request struct {
	ID      uint64
	Path    string
	Trigger Trigger
	Replace bool
}

// Outcome is the result of one navigation request.
type Outcome struct {
	ID     uint64
	Status Status

	// Path is the resolved location for committed navigations and the
	// requested location otherwise.
	Path string

	View   *View
	Scroll ScrollInstruction

	// Redirects is the number of redirects followed.
	Redirects int

	// MatchedBy is "route", "wildcard" or "fallback" for the final match.
	MatchedBy string

	// Duration is the time from request to outcome.
	Duration time.Duration

	Err error
}
