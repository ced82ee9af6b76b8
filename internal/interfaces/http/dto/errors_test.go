package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeValidationRequired, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeUnitOccupied, http.StatusUnprocessableEntity},
		{ErrCodeTenantArchived, http.StatusUnprocessableEntity},
		{ErrCodeAccountLocked, http.StatusUnauthorized},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}

	t.Run("unmapped code defaults to 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_NOVEL"))
	})
}

func TestNormalizeErrorCode(t *testing.T) {
	legacy := map[string]string{
		"NOT_FOUND":             ErrCodeNotFound,
		"ALREADY_EXISTS":        ErrCodeAlreadyExists,
		"INVALID_INPUT":         ErrCodeInvalidInput,
		"INVALID_STATE":         ErrCodeInvalidState,
		"UNAUTHORIZED":          ErrCodeUnauthorized,
		"FORBIDDEN":             ErrCodeForbidden,
		"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
		"OPTIMISTIC_LOCK_ERROR": ErrCodeConcurrencyConflict,
		"DUPLICATE_EMAIL":       ErrCodeAlreadyExists,
		"DUPLICATE_UNIT_NUMBER": ErrCodeAlreadyExists,
		"INVALID_CREDENTIALS":   ErrCodeUnauthorized,
		"ACCOUNT_LOCKED":        ErrCodeAccountLocked,
		"TENANT_ARCHIVED":       ErrCodeTenantArchived,
		"UNIT_OCCUPIED":         ErrCodeUnitOccupied,
		"INVALID_TICKET_STATE":  ErrCodeInvalidState,
		"ALREADY_PAID":          ErrCodeInvalidState,
		"VALIDATION_ERROR":      ErrCodeValidation,
		"BAD_REQUEST":           ErrCodeBadRequest,
		"REQUEST_TOO_LARGE":     ErrCodeRequestTooLarge,
		"INTERNAL_ERROR":        ErrCodeInternal,
	}

	for input, want := range legacy {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, NormalizeErrorCode(input))
		})
	}

	t.Run("normalized and unknown codes pass through", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
		assert.Equal(t, ErrCodeValidation, NormalizeErrorCode(ErrCodeValidation))
		assert.Equal(t, "CUSTOM_ERROR", NormalizeErrorCode("CUSTOM_ERROR"))
	})
}

func TestErrorCodeTable(t *testing.T) {
	// every wire code carries the ERR_ prefix and a positive status
	for code, status := range ErrorCodeHTTPStatus {
		t.Run(code, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(code, "ERR_"), "code %s must use the ERR_ prefix", code)
			assert.Greater(t, status, 0)
		})
	}

	// every legacy mapping lands on a code the status table knows
	for legacy, normalized := range LegacyErrorCodeMapping {
		t.Run(legacy, func(t *testing.T) {
			_, ok := ErrorCodeHTTPStatus[normalized]
			assert.True(t, ok, "legacy code %s maps to unmapped code %s", legacy, normalized)
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	t.Run("normalizes legacy codes", func(t *testing.T) {
		resp := NewErrorResponse("NOT_FOUND", "Tenant not found")

		assert.False(t, resp.Success)
		assert.Nil(t, resp.Data)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "Tenant not found", resp.Error.Message)
		assert.NotZero(t, resp.Error.Timestamp)
	})

	t.Run("stamps the current time", func(t *testing.T) {
		before := time.Now()
		resp := NewErrorResponse(ErrCodeInternal, "Server error")
		after := time.Now()

		assert.False(t, resp.Error.Timestamp.Before(before.UTC()))
		assert.False(t, resp.Error.Timestamp.After(after.UTC()))
	})
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Tenant not found", "req-123-456")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Tenant not found", resp.Error.Message)
	assert.Equal(t, "req-123-456", resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "email", Message: "Invalid email format"},
		{Field: "monthly_rent", Message: "Must be greater than 0"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Validation failed", resp.Error.Message)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "email", resp.Error.Details[0].Field)
	assert.Equal(t, "Invalid email format", resp.Error.Details[0].Message)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	help := "https://docs.example.com/errors/auth"
	resp := NewErrorResponseWithHelp(ErrCodeUnauthorized, "Not authenticated", "req-001", help)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "Not authenticated", resp.Error.Message)
	assert.Equal(t, help, resp.Error.Help)
}

func TestErrorResponseRoundTrip(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Tenant not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "Tenant not found", decoded.Error.Message)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"tenant_id": "t-1"})

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"unit-101", "unit-102"}, 100, 1, 10)

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, 10, resp.Meta.TotalPages)
}

func TestSuccessMetaPagination(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		pageSize  int
		wantPages int
		wantSize  int
	}{
		{"exact pages", 100, 10, 10, 10},
		{"partial last page", 101, 10, 11, 10},
		{"no rows", 0, 10, 0, 10},
		{"under one page", 9, 10, 1, 10},
		{"exactly one page", 10, 10, 1, 10},
		{"just over one page", 11, 10, 2, 10},
		{"zero page size defaults", 100, 0, 5, 20},
		{"negative page size defaults", 100, -1, 5, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta(nil, tt.total, 1, tt.pageSize)
			assert.Equal(t, tt.wantPages, resp.Meta.TotalPages)
			assert.Equal(t, tt.wantSize, resp.Meta.PageSize)
		})
	}
}
