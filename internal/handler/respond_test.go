package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperr "hackhub/pkg/errors"
	"hackhub/pkg/logger"
)

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func TestRespondErrorKindMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   apperr.Kind
	}{
		{"validation", apperr.NewValidationError("bad input", nil), http.StatusBadRequest, apperr.KindValidation},
		{"state conflict", apperr.NewStateConflictError("wrong state"), http.StatusConflict, apperr.KindStateConflict},
		{"not eligible", apperr.NewNotEligibleError("not a judge"), http.StatusForbidden, apperr.KindNotEligible},
		{"already finalized", apperr.NewAlreadyFinalizedError("done"), http.StatusConflict, apperr.KindAlreadyFinalized},
		{"not found", apperr.NewNotFoundError("no such team"), http.StatusNotFound, apperr.KindNotFound},
		{"capacity", apperr.NewCapacityExceededError("team full"), http.StatusConflict, apperr.KindCapacityExceeded},
		{"unclassified becomes internal", errors.New("pq: connection reset"), http.StatusInternalServerError, apperr.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, testLogger(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp apperr.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantKind, resp.Error.Kind)
			assert.NotEmpty(t, resp.Error.Timestamp)
		})
	}
}

func TestRespondErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, testLogger(), errors.New("password=hunter2 dial failed"))

	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestDecodeAndValidate(t *testing.T) {
	type payload struct {
		Name  string `json:"name" validate:"required"`
		Score int    `json:"score" validate:"min=0,max=100"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"demo","score":50}`))
		var p payload
		require.NoError(t, decodeAndValidate(r, &p))
		assert.Equal(t, "demo", p.Name)
	})

	t.Run("malformed json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":`))
		var p payload
		err := decodeAndValidate(r, &p)
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
	})

	t.Run("failed validation carries field details", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"score":250}`))
		var p payload
		err := decodeAndValidate(r, &p)
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
		assert.Contains(t, appErr.Details, "Name")
		assert.Contains(t, appErr.Details, "Score")
	})
}
