package app

import (
	"encoding/json"
	"net/http"
)

// RequireMethod validates that the request uses the specified HTTP method
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// writeJSON encodes v to the response with the given status code.
func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.Log.Error().Err(err).Msg("encoding response failed")
	}
}

func (a *App) writeStatus(w http.ResponseWriter, status string) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}
