package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// ErrBodyTooLarge is returned by ParseJSON when MaxBytes cut the body off
var ErrBodyTooLarge = errors.New("request body too large")

// ParseJSON decodes the request body into dest. An empty body leaves dest
// untouched so absent fields are reported by the handler, not as a parse error.
func ParseJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dest)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrBodyTooLarge
	}
	return fmt.Errorf("invalid JSON: %w", err)
}

// ParseJSONOrError decodes JSON and writes a 400 (or 413) on failure
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	err := ParseJSON(r, dest)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrBodyTooLarge):
		WriteErrorMessage(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		WriteBadRequest(w, "Request body must be valid JSON")
	}
	return false
}

// ParsePathInt64 extracts and parses an int64 path parameter
func ParsePathInt64(r *http.Request, key string) (int64, error) {
	str := mux.Vars(r)[key]
	if str == "" {
		return 0, fmt.Errorf("missing path parameter: %s", key)
	}
	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %s", key, str)
	}
	return val, nil
}
