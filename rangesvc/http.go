package rangesvc

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hupe1980/digitstream"
)

// cacheControl is the directive for successful reads. The sequence is
// immutable, so responses are publicly cacheable forever.
const cacheControl = "public, max-age=31536000, immutable"

// Handler serves one object's range reads over HTTP.
//
// GET ?start=<non-negative int>&length=<positive int> responds with the raw
// bytes as text/plain. start defaults to 0, length to the service default.
// Malformed or out-of-bound parameters get 400; a missing backing object
// gets 404; a transient store failure gets 502 (clients retry).
type Handler struct {
	svc    *Service
	name   string
	logger *digitstream.Logger
}

// NewHandler creates an HTTP handler reading the named object through svc.
func NewHandler(svc *Service, name string, logger *digitstream.Logger) *Handler {
	if logger == nil {
		logger = digitstream.NoopLogger()
	}
	return &Handler{svc: svc, name: name, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start, length, err := h.parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := h.svc.Read(r.Context(), h.name, start, length)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Debug("range request served",
		"object", h.name,
		"start", start,
		"length", length,
		"bytes", len(data),
		"remote", r.RemoteAddr,
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(data)
	}
}

// parseRange validates the query parameters. The boundary is stricter than
// the in-process service: a length above the max range is rejected here,
// not clamped, so misbehaving clients get an explicit 400.
func (h *Handler) parseRange(r *http.Request) (start, length int64, err error) {
	q := r.URL.Query()

	start = 0
	if v := q.Get("start"); v != "" {
		start, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("malformed start %q", v)
		}
		if start < 0 {
			return 0, 0, fmt.Errorf("start must be non-negative, got %d", start)
		}
	}

	length = h.svc.DefaultLength()
	if v := q.Get("length"); v != "" {
		length, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("malformed length %q", v)
		}
		if length <= 0 {
			return 0, 0, fmt.Errorf("length must be positive, got %d", length)
		}
		if length > h.svc.MaxRange() {
			return 0, 0, fmt.Errorf("length %d exceeds maximum %d", length, h.svc.MaxRange())
		}
	}

	return start, length, nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, digitstream.ErrInvalidRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, digitstream.ErrNotFound):
		http.Error(w, "object not found", http.StatusNotFound)
	case digitstream.IsTransient(err):
		h.logger.Warn("transient read failure",
			"object", h.name,
			"error", err,
			"remote", r.RemoteAddr,
		)
		http.Error(w, "temporarily unavailable", http.StatusBadGateway)
	default:
		h.logger.Error("read failed",
			"object", h.name,
			"error", err,
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
