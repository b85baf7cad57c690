package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"navbuddy/api/internal/apperr"
	"navbuddy/api/internal/directions"
	"navbuddy/api/internal/hazard"
	"navbuddy/api/internal/logging"
	"navbuddy/api/internal/places"
	"navbuddy/api/internal/reader"
)

type HazardDetector interface {
	Detect(ctx context.Context, imagePayload string) (hazard.Response, error)
}

type ObjectReader interface {
	Read(ctx context.Context, imagePayload, command string) (reader.Response, error)
}

type PlaceFinder interface {
	Search(ctx context.Context, q places.Query) ([]places.Candidate, error)
}

type DirectionsFinder interface {
	Get(ctx context.Context, in directions.Request) (directions.Route, error)
}

type Handle struct {
	hazards    HazardDetector
	reader     ObjectReader
	places     PlaceFinder
	directions DirectionsFinder
	log        *logging.Logger

	// DefaultTimeout bounds a whole request unless the client asks for less.
	DefaultTimeout time.Duration
}

func New(hz HazardDetector, rd ObjectReader, pl PlaceFinder, dir DirectionsFinder, log *logging.Logger) *Handle {
	return &Handle{
		hazards:        hz,
		reader:         rd,
		places:         pl,
		directions:     dir,
		log:            logging.Or(log),
		DefaultTimeout: 60 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, errorBody{
		Error:     msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: logging.RequestID(r.Context()),
	})
}

// fail maps err to a status and logs everything that is not the client's fault.
func (h *Handle) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := apperr.HTTPStatus(err)
	// таймаут апстрима приходит завёрнутым в UpstreamError
	if errors.Is(err, context.DeadlineExceeded) {
		code = http.StatusGatewayTimeout
	}
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	if code >= 500 {
		h.log.Error.Printf("%s [%s]: %v", op, logging.RequestID(r.Context()), err)
	}
	writeError(w, r, code, msg)
}

// decode reads a JSON body; the size is capped by the body-limit middleware.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, r, http.StatusBadRequest, "empty body")
		default:
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("bad json: %v", err))
		}
		return false
	}
	return true
}

// requestContext applies X-Request-Timeout (header) or timeoutSec (query),
// both in seconds, on top of DefaultTimeout.
func (h *Handle) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	deadline := h.DefaultTimeout
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return context.WithTimeout(r.Context(), deadline)
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
