package response

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error renders err as a JSON error body. HTTPError values keep their status
// and message; anything else becomes a generic 500 so internal details never
// leak to clients.
func Error(w http.ResponseWriter, err error) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		msg := httpErr.Message
		if msg == "" {
			msg = http.StatusText(httpErr.Code)
		}
		JSON(w, httpErr.Code, ErrorBody{StatusCode: httpErr.Code, Message: msg})
		return
	}

	JSON(w, http.StatusInternalServerError, ErrorBody{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal Server Error",
	})
}
