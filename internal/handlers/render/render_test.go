package render

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_JSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		data := map[string]any{"key1": 1, "key2": "222"}
		JSON(w, data)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"key1":1,"key2":"222"}`+"\n", string(body))
}

func TestRender_Message(t *testing.T) {
	w := httptest.NewRecorder()

	Message(w, "Message sent")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message": "Message sent"}`, w.Body.String())
}

func TestRender_Error(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		Error(w, "User not found", http.StatusNotFound)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"error": "User not found"}`, string(body))
}

func TestRender_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := struct {
			Key      string `json:"key"`
			AuthorID int64  `json:"author_id"`
		}{}

		err := json.NewDecoder(r.Body).Decode(&value)
		require.Error(t, err, "Please check what JSON was sent. Test expected that it is invalid")
		DecodeError(w, err)
	}))
	defer ts.Close()

	tests := []struct {
		name        string
		requestBody string
		expected    string
	}{
		{
			name:        "json parsing error",
			requestBody: `invalid-json`,
			expected:    `{"error": "Failed to parse JSON: invalid character 'i' looking for beginning of value"}`,
		},
		{
			name:        "invalid type",
			requestBody: `{"key": "valid_json", "author_id": "abc"}`,
			expected:    `{"error": "Invalid data type for field 'author_id'"}`,
		},
		{
			name:        "not integer",
			requestBody: `{"author_id": 1.5}`,
			expected:    `{"error": "Invalid data type for field 'author_id'"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expected, string(body))
		})
	}
}

func TestRender_ValidationErrors(t *testing.T) {
	validate := newValidator()

	t.Run("invalid values", func(t *testing.T) {
		type T struct {
			AuthorID int64  `json:"author_id" validate:"gte=0"`
			Email    string `json:"email" validate:"email"`
		}

		err := validate.Struct(T{AuthorID: -1, Email: "not-valid-email"})
		errs, ok := err.(validator.ValidationErrors)
		require.True(t, ok, "test expects that data not pass validation")

		w := httptest.NewRecorder()
		ValidationErrors(w, errs)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{
			"error": "Invalid field values",
			"fields": {
				"author_id": "Value is too small (minimum 0)",
				"email": "Invalid value"
			}
		}`, w.Body.String())
	})

	t.Run("missing required", func(t *testing.T) {
		type T struct {
			Username *string `json:"username" validate:"required"`
			AuthorID int64   `json:"author_id" validate:"gte=0"`
		}

		err := validate.Struct(T{AuthorID: -1})
		errs, ok := err.(validator.ValidationErrors)
		require.True(t, ok, "test expects that data not pass validation")

		w := httptest.NewRecorder()
		ValidationErrors(w, errs)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error": "Missing required fields"}`, w.Body.String())
	})
}

func TestRender_BindAndValidate(t *testing.T) {
	type User struct {
		Username *string `json:"username" validate:"required"`
	}

	tests := []struct {
		name           string
		requestBody    string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid request",
			requestBody:    `{"username": "john"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "empty string is present",
			requestBody:    `{"username": ""}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "invalid json",
			requestBody:    `invalid-json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error": "Failed to parse JSON: invalid character 'i' looking for beginning of value"}`,
		},
		{
			name:           "validation failed",
			requestBody:    `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error": "Missing required fields"}`,
		},
		{
			name:           "null is absent",
			requestBody:    `{"username": null}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error": "Missing required fields"}`,
		},
		{
			name:           "trailing garbage",
			requestBody:    `{"username": "john"} trailing garbage`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error": "Failed to parse JSON: invalid character 't' looking for beginning of value"}`,
		},
		{
			name:           "two json values",
			requestBody:    `{"username": "john"} {"username": "jane"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error": "Failed to parse JSON: unexpected data after JSON value"}`,
		},
		{
			name:           "trailing whitespace ok",
			requestBody:    "{\"username\": \"john\"}\n\t ",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "empty body is empty object",
			requestBody:    ``,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error": "Missing required fields"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, err := BindAndValidate[User](w, r)
				if err != nil {
					return // Error response already written
				}
				JSON(w, map[string]bool{"success": true})
			}))
			defer ts.Close()

			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			require.Equal(t, tc.expectedStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, string(body))
		})
	}
}

func TestRender_BindAndValidate_TooLarge(t *testing.T) {
	type Message struct {
		Message string `json:"message"`
	}

	body := `{"message": "` + strings.Repeat("a", maxBodySize) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	w := httptest.NewRecorder()

	_, err := BindAndValidate[Message](w, r)

	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Request body is too large (maximum 1048576 bytes)"}`, w.Body.String())
}

func TestRender_BindAndValidateLimit_NoLimit(t *testing.T) {
	type Message struct {
		Message string `json:"message"`
	}

	text := strings.Repeat("a", 2*maxBodySize)
	r := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"message": "`+text+`"}`))
	w := httptest.NewRecorder()

	data, err := BindAndValidateLimit[Message](w, r, 0)

	require.NoError(t, err)
	require.Equal(t, text, data.Message)
}
