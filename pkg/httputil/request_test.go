package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func TestParseJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com"}`))

	var body loginBody
	err := ParseJSON(req, &body)

	require.NoError(t, err)
	require.NotNil(t, body.Email)
	assert.Equal(t, "a@b.com", *body.Email)
	assert.Nil(t, body.Password)
}

func TestParseJSON_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(nil))

	var body loginBody
	err := ParseJSON(req, &body)

	assert.NoError(t, err)
	assert.Nil(t, body.Email)
}

func TestParseJSON_Invalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))

	var body loginBody
	err := ParseJSON(req, &body)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestParseJSONOrError(t *testing.T) {
	t.Run("invalid json writes 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))

		var body loginBody
		ok := ParseJSONOrError(w, req, &body)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Request body must be valid JSON"}`, w.Body.String())
	})

	t.Run("oversized body writes 413", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"`+strings.Repeat("a", 100)+`"}`))
		req.Body = http.MaxBytesReader(w, req.Body, 16)

		var body loginBody
		ok := ParseJSONOrError(w, req, &body)

		assert.False(t, ok)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("valid json", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"password":"x"}`))

		var body loginBody
		assert.True(t, ParseJSONOrError(w, req, &body))
		assert.Equal(t, "x", *body.Password)
	})
}

func TestParsePathInt64(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		want    int64
		wantErr bool
	}{
		{"valid", map[string]string{"comment_id": "42"}, 42, false},
		{"missing", map[string]string{}, 0, true},
		{"not a number", map[string]string{"comment_id": "abc"}, 0, true},
		{"overflow", map[string]string{"comment_id": "99999999999999999999"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), tt.vars)

			got, err := ParsePathInt64(req, "comment_id")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
