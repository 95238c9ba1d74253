package api

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends a plain-text error body, matching the original site's
// form-facing contract.
func writeError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, msg, status)
}
