package utils

import (
	"encoding/json"
	"net/http"
)

// AuthRequiredMessage is the fixed message of every authentication failure body
const AuthRequiredMessage = "Authentication required"

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// AuthErrorResponse is the body returned when a request fails authentication
type AuthErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// NewAuthErrorResponse builds the failure body for reason
func NewAuthErrorResponse(reason string) AuthErrorResponse {
	return AuthErrorResponse{
		OK:      false,
		Error:   reason,
		Message: AuthRequiredMessage,
	}
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with optional data
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// WriteAuthError writes an authentication failure with the given status code
func WriteAuthError(w http.ResponseWriter, status int, reason string) error {
	return WriteJSON(w, status, NewAuthErrorResponse(reason))
}

// WriteBadRequest writes a 400 Bad Request response with optional details
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]interface{}) error {
	return WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: message,
		Details: details,
	})
}

// WriteValidationError writes a 400 response carrying per-field messages when err
// is a ValidationError, and err's text otherwise
func WriteValidationError(w http.ResponseWriter, err error) error {
	if !IsValidationError(err) {
		return WriteBadRequest(w, err.Error(), nil)
	}
	details := make(map[string]interface{})
	for field, msg := range GetValidationFields(err) {
		details[field] = msg
	}
	return WriteBadRequest(w, "Validation failed", details)
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return WriteJSON(w, http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: message,
	})
}

// WriteInternalServerError writes a 500 Internal Server Error response
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: message,
	})
}
