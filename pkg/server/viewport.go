package server

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/atomic"

	"github.com/vango-dev/lazyroute/pkg/scrollstore"
)

// Viewport holds the scroll offset last reported by the client through
// PUT /api/viewport. It implements navigation.Viewport.
type Viewport struct {
	pos atomic.Pointer[scrollstore.Position]
}

// NewViewport returns a viewport at the origin.
func NewViewport() *Viewport {
	v := &Viewport{}
	v.pos.Store(&scrollstore.Position{})
	return v
}

// Offset returns the last reported offset.
func (v *Viewport) Offset() scrollstore.Position {
	return *v.pos.Load()
}

// Set records an offset.
func (v *Viewport) Set(p scrollstore.Position) {
	v.pos.Store(&p)
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var pos scrollstore.Position
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&pos); err != nil {
		writeError(w, http.StatusBadRequest, &ErrorResponse{Message: "invalid request body: " + err.Error()})
		return
	}
	s.config.Viewport.Set(pos)
	w.WriteHeader(http.StatusNoContent)
}
