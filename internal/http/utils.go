package http

import (
	"encoding/json"
	"net/http"
)

// writeJSON encodes v as the response body with the given status. The status
// is written before encoding starts, so an encode failure cannot change it.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONError reports a failure as {"error": message}. Every non-2xx
// response in the API uses this shape.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
