package handle

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"navbuddy/api/internal/logging"
)

// MaxBodyBytes leaves room for a 4 MiB image after base64 inflation.
const MaxBodyBytes = 8 << 20

// Gate holds the per-endpoint checks shared by every POST route.
type Gate struct {
	APIKey string
	Log    *logging.Logger
}

// Wrap adds, in order: request id, CORS preflight, POST-only, API key and
// body size limit.
func (g *Gate) Wrap(next http.HandlerFunc) http.Handler {
	return WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			preflight(w)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST, OPTIONS")
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if !g.authorized(r) {
			writeError(w, r, http.StatusUnauthorized, "invalid API key")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
		next(w, r)
	}))
}

func preflight(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST")
	h.Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Request-Timeout")
	h.Set("Access-Control-Max-Age", "3600")
	w.WriteHeader(http.StatusNoContent)
}

// authorized: a missing header is always rejected; with no configured key any
// non-empty header passes.
func (g *Gate) authorized(r *http.Request) bool {
	got := r.Header.Get("X-API-Key")
	if got == "" {
		return false
	}
	if strings.TrimSpace(g.APIKey) == "" {
		logging.Or(g.Log).Info.Printf("warning [%s]: API_KEY not set, request allowed", logging.RequestID(r.Context()))
		return true
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(g.APIKey)) == 1
}

// WithRequestID takes X-Request-ID from the client or makes one, echoes it
// back and stores it in the request context.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}
