package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/reflow/pkg/buildinfo"
	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/observability"
	"github.com/matzehuels/reflow/pkg/pipeline"
	"github.com/matzehuels/reflow/pkg/render"
)

// CacheHeader reports whether the layout came from the cache ("hit" or
// "miss").
const CacheHeader = "X-Reflow-Cache"

// layoutRequest is the body of the measure and place endpoints.
type layoutRequest struct {
	Document *document.Document `json:"document"`
	Options  pipeline.Options   `json:"options"`
}

type measureResponse struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rows   int     `json:"rows"`
	Cached bool    `json:"cached"`
}

type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	Field     string      `json:"field,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *Server) handleMeasure(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeLayoutRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, hit, err := s.runnerFor(r).ComputeWithCacheInfo(r.Context(), req.Document, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, measureResponse{
		Width:  res.Width,
		Height: res.Height,
		Rows:   res.Rows,
		Cached: hit,
	})
}

// handlePlace answers with the JSON result, or with a rendering of it when
// the format query parameter names one.
func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeLayoutRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	runner := s.runnerFor(r)
	res, hit, err := runner.ComputeWithCacheInfo(r.Context(), req.Document, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)

	format := r.URL.Query().Get("format")
	if format == "" || format == render.FormatJSON {
		writeJSON(w, http.StatusOK, res)
		return
	}
	opts := req.Options
	opts.Formats = []string{format}
	s.writeArtifact(w, r, runner, res, opts)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errNoStore)
		return
	}
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	d, err := document.Read(body, document.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Put(r.Context(), d); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/layouts/"+d.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"id": d.ID})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errNoStore)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": summaries})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	d, err := s.loadDocument(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errNoStore)
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.loadDocument(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, hit, err := s.runnerFor(r).ComputeWithCacheInfo(r.Context(), d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.loadDocument(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	runner := s.runnerFor(r)
	res, hit, err := runner.ComputeWithCacheInfo(r.Context(), d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	opts.Formats = []string{render.FormatSVG}
	s.writeArtifact(w, r, runner, res, opts)
}

// =============================================================================
// Helpers
// =============================================================================

var errNoStore = errors.New(errors.ErrCodeUnavailable, "no document store configured")

func (s *Server) decodeLayoutRequest(w http.ResponseWriter, r *http.Request) (*layoutRequest, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	var req layoutRequest
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode request")
	}
	if req.Document == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "document is required")
	}
	return &req, nil
}

func (s *Server) loadDocument(r *http.Request) (*document.Document, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	return s.store.Get(r.Context(), chi.URLParam(r, "id"))
}

func (s *Server) writeArtifact(w http.ResponseWriter, r *http.Request, runner *pipeline.Runner, res *document.Result, opts pipeline.Options) {
	format := opts.Formats[0]
	artifacts, err := runner.Render(r.Context(), res, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// optionsFromQuery reads layout and render overrides from the query string.
func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Alignment: q.Get("alignment"),
		Style:     q.Get("style"),
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"negotiated", &opts.Negotiated},
		{"refresh", &opts.Refresh},
		{"labels", &opts.Labels},
		{"bounds", &opts.Bounds},
	}
	for _, b := range bools {
		v := q.Get(b.name)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", b.name, v)
		}
		*b.dst = parsed
	}

	if v := q.Get("spacing"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidSpacing, "invalid spacing %q", v)
		}
		opts.Spacing = &f
	}
	if v := q.Get("width"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid width %q", v)
		}
		opts.Width = &f
	}
	return opts, nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "stats are not enabled"))
		return
	}
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError answers with the error's code and user message. Errors without
// a code are reported as INTERNAL_ERROR and their details stay in the log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)

	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
		code = errors.ErrCodeInvalidInput
		msg = "request body too large"
	case code == "":
		code = errors.ErrCodeInternal
		msg = "internal server error"
	}

	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "route", routePattern(r), "error", err)
	} else {
		s.logger.Debug("request rejected", "route", routePattern(r), "code", code, "error", err)
	}

	writeJSON(w, status, errorResponse{
		Code:      code,
		Message:   msg,
		Field:     errors.FieldOf(err),
		RequestID: middleware.GetReqID(r.Context()),
	})
}
