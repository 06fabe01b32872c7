package server

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeData wraps v in the standard success envelope.
func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, map[string]any{
		"success": true,
		"data":    v,
	})
}

// writeList is writeData plus pagination metadata for list endpoints.
func writeList(w http.ResponseWriter, v any, count, limit, offset int) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    v,
		"count":   count,
		"limit":   limit,
		"offset":  offset,
	})
}
