package utils

import (
	"encoding/json"
	"net/http"
)

// WriteJSONResponse writes v as JSON with the given status
func WriteJSONResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
