// Package httpapi is the request boundary: it validates inbound documents,
// invokes the extraction engine, and serializes the aggregated response.
// Input errors become client-error responses; per-sentence failures are data
// in the 200 response, never request-level errors.
package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/civicsignal/augur/internal/logging"
	"github.com/civicsignal/augur/pkg/augur"
	"github.com/civicsignal/augur/pkg/augur/internalerr"
	"github.com/civicsignal/augur/pkg/augur/pipeline"
)

// Extractor is the engine capability the boundary needs.
type Extractor interface {
	Extract(ctx context.Context, d augur.Document) (*pipeline.DocumentResult, error)
}

// Server serves the extraction API.
type Server struct {
	extractor Extractor
	version   string
	logger    *slog.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates a Server around an extractor.
func New(extractor Extractor, version string) *Server {
	return &Server{
		extractor: extractor,
		version:   version,
		logger:    logging.New("httpapi"),
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/extract", s.handleExtract)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

type extractRequest struct {
	Text *string `json:"text"`
	ID   *string `json:"id"`
	Date *string `json:"date"`
}

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	// GET with a JSON body is accepted alongside POST; some legacy news
	// pipelines submit extraction requests that way.
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method-not-allowed"})
		return
	}

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid-json"})
		return
	}
	if field, ok := missingField(req); ok {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "missing-field", Field: field})
		return
	}

	requestID := s.newRequestID()
	logger := s.logger.With("request_id", requestID, "doc_id", *req.ID)

	start := time.Now()
	result, err := s.extractor.Extract(r.Context(), augur.Document{
		ID:   *req.ID,
		Date: *req.Date,
		Text: *req.Text,
	})
	if err != nil {
		if errors.Is(err, internalerr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid-input"})
			return
		}
		logger.Error("extraction failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "internal"})
		return
	}

	logger.Info("document processed",
		"sentences", len(result.Sents),
		"duration", time.Since(start))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}{"ok", s.version})
}

// missingField reports the first required field absent from the request.
// Text may be empty but must be present.
func missingField(req extractRequest) (string, bool) {
	switch {
	case req.Text == nil:
		return "text", true
	case req.ID == nil || *req.ID == "":
		return "id", true
	case req.Date == nil || *req.Date == "":
		return "date", true
	}
	return "", false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) newRequestID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}
