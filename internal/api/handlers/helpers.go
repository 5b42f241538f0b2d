package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"dispatch-tracking-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeFailure maps a typed dispatch failure to an HTTP status. Errors
// with no dispatch kind fall through to 500 without leaking internals.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	f, ok := domain.AsFailure(err)
	if !ok {
		log.Printf("internal error: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch f.Kind {
	case domain.KindInvalidInput:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindUnavailable, domain.KindInvalidTransition:
		status = http.StatusConflict
	case domain.KindOutOfRange, domain.KindNoValidStops:
		status = http.StatusUnprocessableEntity
	}

	body := map[string]any{
		"error": f.Msg,
		"kind":  string(f.Kind),
	}
	if f.Kind == domain.KindOutOfRange {
		body["distance_meters"] = f.Meters
	}
	writeJSON(w, r, status, body)
}

// decodeJSON reads a request body into dst, rejecting unknown fields so
// client typos surface as 400s instead of silently-ignored input.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
