package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"medikart/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{name: "Authentication", err: model.ErrInvalidCredentials, expectedStatus: http.StatusUnauthorized, expectedCode: model.ErrCodeInvalidCredentials},
		{name: "Authorization", err: model.ErrForbidden, expectedStatus: http.StatusForbidden, expectedCode: model.ErrCodeForbidden},
		{name: "Validation", err: model.NewValidationError("name is required"), expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeValidation},
		{name: "Not found", err: model.ErrOrderNotFound, expectedStatus: http.StatusNotFound, expectedCode: model.ErrCodeOrderNotFound},
		{name: "Conflict", err: model.NewInsufficientStockError("Aspirin", 0, 1), expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeInsufficientStock},
		{name: "Duplicate medicine name", err: fmt.Errorf("failed to create medicine: %w", model.ErrMedicineNameTaken), expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeMedicineNameTaken},
		{name: "Wrapped domain error", err: fmt.Errorf("outer: %w", model.ErrIllegalTransition), expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeIllegalTransition},
		{name: "Unexpected error", err: errors.New("connection reset"), expectedStatus: http.StatusInternalServerError, expectedCode: model.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			writeError(w, tt.err, zerolog.Nop())

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			body := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, body.Error)
			assert.NotEmpty(t, body.Message)
			assert.NotContains(t, body.Message, "connection reset")
		})
	}
}

func TestWriteJSON(t *testing.T) {
	t.Run("Encodes body", func(t *testing.T) {
		w := httptest.NewRecorder()

		writeJSON(w, http.StatusCreated, MessageResponse{Message: "ok"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"message":"ok"}`, w.Body.String())
	})

	t.Run("Unencodable body keeps status", func(t *testing.T) {
		w := httptest.NewRecorder()

		writeJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Error)

	w = httptest.NewRecorder()
	MethodNotAllowed(w, httptest.NewRequest(http.MethodPatch, "/orders", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, w).Error)
}
