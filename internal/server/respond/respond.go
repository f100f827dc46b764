// Package respond writes the JSON envelopes used by every handler:
// {"message": ..., "data": ...} on success and {"error": ..., "code": ...}
// on failure.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error codes returned in the "code" field. Clients branch on these, so
// they are part of the API surface.
const (
	CodeNoToken                 = "NO_TOKEN"
	CodeInvalidTokenFormat      = "INVALID_TOKEN_FORMAT"
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeTokenExpired            = "TOKEN_EXPIRED"
	CodeTokenRevoked            = "TOKEN_REVOKED"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeUserInactive            = "USER_INACTIVE"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeResourceNotOwned        = "RESOURCE_NOT_OWNED"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeInvalidPayload          = "INVALID_PAYLOAD"
	CodeValidation              = "VALIDATION_ERROR"
	CodeNotFound                = "NOT_FOUND"
	CodeConflict                = "CONFLICT"
	CodeInternal                = "INTERNAL_ERROR"
)

type successBody struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Success writes a success envelope. data may be nil.
func Success(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, successBody{Message: message, Data: data})
}

// Error writes an error envelope with a client-visible code and message.
func Error(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: message, Code: code})
}

// Internal writes a generic 500 envelope and logs the underlying error.
// The cause never reaches the client.
func Internal(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("request failed")
	Error(w, http.StatusInternalServerError, CodeInternal, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("writing response body")
	}
}
