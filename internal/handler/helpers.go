package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dstrand/tally/internal/register"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeMutatorError maps mutator failures: validation problems are the
// caller's fault, anything else is a local store failure.
func writeMutatorError(w http.ResponseWriter, err error) {
	if register.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "local store error")
}
