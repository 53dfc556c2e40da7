package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	lrerrors "github.com/vango-dev/lazyroute/internal/errors"
	"github.com/vango-dev/lazyroute/pkg/navigation"
	"github.com/vango-dev/lazyroute/pkg/routetable"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 * 1024

// ViewResponse is the JSON form of a navigation.View.
type ViewResponse struct {
	ID     string            `json:"id"`
	Bundle string            `json:"bundle,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// StateResponse is the JSON form of a navigation.State.
type StateResponse struct {
	ID        uint64                       `json:"id"`
	Path      string                       `json:"path"`
	Status    navigation.Status            `json:"status"`
	Scroll    navigation.ScrollInstruction `json:"scroll"`
	View      *ViewResponse                `json:"view,omitempty"`
	Redirects int                          `json:"redirects"`
	Error     *ErrorResponse               `json:"error,omitempty"`
}

// OutcomeResponse is the JSON form of a navigation.Outcome.
type OutcomeResponse struct {
	StateResponse
	MatchedBy  string  `json:"matchedBy,omitempty"`
	DurationMS float64 `json:"durationMs"`
}

// ErrorResponse describes a failure.
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// NavigateRequest is the body of POST /api/navigate.
type NavigateRequest struct {
	Path    string `json:"path"`
	Replace bool   `json:"replace,omitempty"`

	// Scroll defaults to true when omitted.
	Scroll *bool `json:"scroll,omitempty"`
}

// HistoryResponse is the body of GET /api/history.
type HistoryResponse struct {
	Entries []string `json:"entries"`
	Index   int      `json:"index"`
}

// NewStateResponse converts a state for the wire.
func NewStateResponse(st navigation.State) StateResponse {
	return StateResponse{
		ID:        st.ID,
		Path:      st.Path,
		Status:    st.Status,
		Scroll:    st.Scroll,
		View:      newViewResponse(st.View),
		Redirects: st.Redirects,
		Error:     newErrorResponse(st.Err),
	}
}

// NewOutcomeResponse converts an outcome for the wire.
func NewOutcomeResponse(out navigation.Outcome) OutcomeResponse {
	return OutcomeResponse{
		StateResponse: StateResponse{
			ID:        out.ID,
			Path:      out.Path,
			Status:    out.Status,
			Scroll:    out.Scroll,
			View:      newViewResponse(out.View),
			Redirects: out.Redirects,
			Error:     newErrorResponse(out.Err),
		},
		MatchedBy:  out.MatchedBy,
		DurationMS: float64(out.Duration.Microseconds()) / 1000,
	}
}

func newViewResponse(v *navigation.View) *ViewResponse {
	if v == nil {
		return nil
	}
	vr := &ViewResponse{ID: v.ID, Params: v.Params}
	if v.Bundle != nil {
		vr.Bundle = v.Bundle.ID
	}
	return vr
}

func newErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	return &ErrorResponse{Code: lrerrors.CodeOf(err), Message: err.Error()}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewStateResponse(s.nav.State()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, index := s.nav.History()
	if entries == nil {
		entries = []string{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries, Index: index})
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	configs := routetable.ToConfig(s.nav.Routes())
	if configs == nil {
		configs = []routetable.Config{}
	}
	writeJSON(w, http.StatusOK, configs)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, &ErrorResponse{Message: "invalid request body: " + err.Error()})
		return
	}

	var opts []navigation.NavigateOption
	if req.Replace {
		opts = append(opts, navigation.WithReplace())
	}
	if req.Scroll != nil && !*req.Scroll {
		opts = append(opts, navigation.WithoutScroll())
	}

	ctx, cancel := s.navigateContext(r)
	defer cancel()
	s.writeOutcome(w, s.nav.Navigate(ctx, req.Path, opts...))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.navigateContext(r)
	defer cancel()
	s.writeOutcome(w, s.nav.Back(ctx))
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.navigateContext(r)
	defer cancel()
	s.writeOutcome(w, s.nav.Forward(ctx))
}

func (s *Server) navigateContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.config.NavigateTimeout > 0 {
		return context.WithTimeout(r.Context(), s.config.NavigateTimeout)
	}
	return context.WithCancel(r.Context())
}

func (s *Server) writeOutcome(w http.ResponseWriter, out navigation.Outcome) {
	status := outcomeStatus(out)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("navigation failed", "path", out.Path, "status", status, "error", out.Err)
	}
	writeJSON(w, status, NewOutcomeResponse(out))
}

// outcomeStatus maps a navigation outcome to an HTTP status code.
func outcomeStatus(out navigation.Outcome) int {
	switch out.Status {
	case navigation.Committed:
		return http.StatusOK
	case navigation.Cancelled:
		return http.StatusConflict
	}
	if errors.Is(out.Err, navigation.ErrNoHistory) {
		return http.StatusNotFound
	}
	switch lrerrors.CodeOf(out.Err) {
	case lrerrors.CodeNoMatch:
		return http.StatusNotFound
	case lrerrors.CodeInvalidPath:
		return http.StatusBadRequest
	case lrerrors.CodeRedirectCycle, lrerrors.CodeTooManyRedirect:
		return http.StatusLoopDetected
	case lrerrors.CodeBundleLoad:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, e *ErrorResponse) {
	writeJSON(w, status, struct {
		Error *ErrorResponse `json:"error"`
	}{e})
}
