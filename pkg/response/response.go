package response

import (
	"encoding/json"
	"net/http"

	"coedit/pkg/logger"
)

// InternalMessage is what clients see in place of an unexpected error.
const InternalMessage = "Something went wrong."

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

// Error writes {"<key>": msg}. The auth routes use "message" and the document
// routes use "error", which is what existing clients read.
func Error(w http.ResponseWriter, status int, key, msg string) {
	JSON(w, status, map[string]string{key: msg})
}
