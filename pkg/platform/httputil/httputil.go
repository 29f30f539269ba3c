// Package httputil holds the JSON helpers shared by all HTTP handlers: one
// response writer, one error envelope, one request decoder.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "railguard/pkg/domain-errors"
)

// WriteJSON writes status and a JSON body.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorEnvelope struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError maps a coded error onto its HTTP status and a JSON envelope.
// Internal errors omit the description; the cause belongs in logs, not in
// responses.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	envelope := errorEnvelope{Error: string(code)}
	if code != dErrors.CodeInternal {
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			envelope.ErrorDescription = domainErr.Message
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(err), envelope)
}

// Decode reads a JSON request body into T and writes the error response
// itself on failure.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var body T
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.WarnContext(r.Context(), "malformed request body", "error", err)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed JSON body"))
		return body, false
	}
	return body, true
}
