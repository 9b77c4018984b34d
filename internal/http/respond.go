package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validators"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

// writeRedirect tells the client which view to go to instead.
func writeRedirect(w http.ResponseWriter, status int, msg, to string) {
	writeJSON(w, status, map[string]string{
		"error":    msg,
		"redirect": to,
	})
}

func writeFieldErrors(w http.ResponseWriter, fe validators.FieldErrors, extra map[string]any) {
	body := map[string]any{
		"error":  "validation failed",
		"fields": fe,
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusUnprocessableEntity, body)
}

func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return errors.New("empty body")
	}
	return err
}
