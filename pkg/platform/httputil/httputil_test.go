package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycportal/pkg/domain-errors"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		withDesc bool
	}{
		{"internal hides description", dErrors.New(dErrors.CodeInternal, "db failed"), http.StatusInternalServerError, "internal_error", false},
		{"plain error is internal", errors.New("boom"), http.StatusInternalServerError, "internal_error", false},
		{"bad request", dErrors.New(dErrors.CodeBadRequest, "invalid input"), http.StatusBadRequest, "bad_request", true},
		{"submission in progress", dErrors.New(dErrors.CodeConflict, "submission already in progress"), http.StatusConflict, "conflict", true},
		{"account service down", dErrors.New(dErrors.CodeUnavailable, "account service unavailable"), http.StatusServiceUnavailable, "unavailable", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.code, body["error"])
			_, hasDesc := body["error_description"]
			assert.Equal(t, tt.withDesc, hasDesc)
		})
	}
}

type flowBody struct {
	Flow string `json:"flow"`
}

func (b *flowBody) Validate() error {
	b.Flow = strings.TrimSpace(b.Flow)
	if b.Flow == "" {
		return dErrors.New(dErrors.CodeValidation, "flow is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	decode := func(body string) (*flowBody, *httptest.ResponseRecorder, bool) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		got, ok := DecodeAndPrepare[flowBody](w, r, logger)
		return got, w, ok
	}

	t.Run("validates and normalizes", func(t *testing.T) {
		got, _, ok := decode(`{"flow":"  investor "}`)
		require.True(t, ok)
		assert.Equal(t, "investor", got.Flow)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, w, ok := decode(`{"flow":"borrower","extra":1}`)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeError(t, w)["error"])
	})

	t.Run("validation failure", func(t *testing.T) {
		_, w, ok := decode(`{"flow":"   "}`)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
