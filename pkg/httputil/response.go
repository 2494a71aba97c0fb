// Package httputil provides HTTP handler utilities for consistent error handling,
// JSON encoding/decoding, and request parsing.
package httputil

import (
	"encoding/json"
	"net/http"
)

const (
	// UnauthorizedMessage is the only body ever returned for a rejected credential
	UnauthorizedMessage = "Unauthorized request"
	// ServerErrorMessage is the body of every unhandled failure
	ServerErrorMessage = "server error"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteErrorMessage writes {"error": message}
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, map[string]string{"error": message})
}

// ErrorObject is the nested error shape used by the users resource
type ErrorObject struct {
	Message string `json:"message"`
}

// WriteErrorObject writes {"error": {"message": message}}
func WriteErrorObject(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, map[string]ErrorObject{"error": {Message: message}})
}

// WriteInfo writes {"info": message}
func WriteInfo(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, map[string]string{"info": message})
}

// WriteBadRequest writes a bad request error (400)
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusBadRequest, message)
}

// WriteUnauthorized writes the generic 401 body
func WriteUnauthorized(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusUnauthorized, UnauthorizedMessage)
}

// WriteNotFoundError writes a not found error response (404 Not Found)
func WriteNotFoundError(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusNotFound, message)
}

// WriteServerError writes the generic 500 body. Details belong in the log only.
func WriteServerError(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusInternalServerError, ServerErrorMessage)
}

// RateLimitResponse is the body of a 429
type RateLimitResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after"`
}

// WriteTooManyRequests writes a rate limit error (429) with a retry hint in seconds
func WriteTooManyRequests(w http.ResponseWriter, retryAfter int) {
	_ = WriteJSON(w, http.StatusTooManyRequests, RateLimitResponse{
		Error:      "rate limit exceeded",
		RetryAfter: retryAfter,
	})
}

// WriteCreated writes 201 with a Location header and the created resource
func WriteCreated(w http.ResponseWriter, location string, data interface{}) error {
	if location != "" {
		w.Header().Set("Location", location)
	}
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteNoContent writes a successful response with no content (204 No Content)
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
