package dto

import "net/http"

// Wire error codes, format ERR_<CATEGORY> or ERR_<CATEGORY>_<DETAIL>.
// Domain code raises its own SCREAMING_SNAKE codes; NormalizeErrorCode maps
// those onto this set at the HTTP boundary.

// General failures.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation failures, all answered with 400.
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"
	ErrCodeValidationLength   = "ERR_VALIDATION_LENGTH"
)

// Authentication and authorization failures.
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource lookup and uniqueness failures.
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule refusals.
const (
	ErrCodeInvalidState   = "ERR_INVALID_STATE"
	ErrCodeBusinessRule   = "ERR_BUSINESS_RULE"
	ErrCodeUnitOccupied   = "ERR_UNIT_OCCUPIED"
	ErrCodeTenantArchived = "ERR_TENANT_ARCHIVED"
	ErrCodeAccountLocked  = "ERR_ACCOUNT_LOCKED"
)

// Malformed input.
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Throttling.
const (
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus maps every wire code onto its HTTP status.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule refusals answer 422, with one exception: a locked
	// account is an auth refusal, not a semantic problem with the request
	ErrCodeInvalidState:   http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:   http.StatusUnprocessableEntity,
	ErrCodeUnitOccupied:   http.StatusUnprocessableEntity,
	ErrCodeTenantArchived: http.StatusUnprocessableEntity,
	ErrCodeAccountLocked:  http.StatusUnauthorized,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the status for a wire code, defaulting to 500 for
// anything unmapped.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping translates the codes raised by domain and
// application code onto the wire set.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"REQUEST_TOO_LARGE":    ErrCodeRequestTooLarge,
	"INTERNAL_ERROR":       ErrCodeInternal,

	// Optimistic lock failures from the persistence layer
	"OPTIMISTIC_LOCK_ERROR": ErrCodeConcurrencyConflict,

	// Uniqueness violations
	"DUPLICATE_EMAIL":       ErrCodeAlreadyExists,
	"DUPLICATE_USERNAME":    ErrCodeAlreadyExists,
	"DUPLICATE_UNIT_NUMBER": ErrCodeAlreadyExists,

	// Authentication outcomes
	"INVALID_CREDENTIALS": ErrCodeUnauthorized,
	"INVALID_PASSWORD":    ErrCodeUnauthorized,
	"ACCOUNT_LOCKED":      ErrCodeAccountLocked,
	"ACCOUNT_DEACTIVATED": ErrCodeForbidden,
	"TOKEN_EXPIRED":       ErrCodeTokenExpired,
	"TOKEN_INVALID":       ErrCodeTokenInvalid,
	"TOKEN_MAX_REFRESH":   ErrCodeTokenInvalid,
	"INVALID_RESET_TOKEN": ErrCodeTokenInvalid,
	"RESET_TOKEN_EXPIRED": ErrCodeTokenExpired,
	"NO_PORTAL_ACCESS":    ErrCodeUnauthorized,

	// Leasing business rules
	"TENANT_ARCHIVED":         ErrCodeTenantArchived,
	"ALREADY_ARCHIVED":        ErrCodeInvalidState,
	"UNIT_OCCUPIED":           ErrCodeUnitOccupied,
	"UNIT_NOT_AVAILABLE":      ErrCodeInvalidState,
	"UNIT_NOT_OCCUPIED":       ErrCodeInvalidState,
	"UNIT_IN_MAINTENANCE":     ErrCodeInvalidState,
	"UNIT_NOT_IN_MAINTENANCE": ErrCodeInvalidState,
	"TENANT_HAS_UNIT":         ErrCodeBusinessRule,
	"TENANT_HAS_NO_UNIT":      ErrCodeBusinessRule,

	// Field level validation raised by domain constructors
	"INVALID_NAME":        ErrCodeValidation,
	"INVALID_EMAIL":       ErrCodeValidationFormat,
	"INVALID_USERNAME":    ErrCodeValidation,
	"INVALID_TITLE":       ErrCodeValidation,
	"INVALID_DESCRIPTION": ErrCodeValidation,
	"INVALID_UNIT_NUMBER": ErrCodeValidation,
	"INVALID_INTENT_ID":   ErrCodeValidation,
	"WEAK_PASSWORD":       ErrCodeValidationLength,

	// Billing and maintenance business rules
	"INVALID_PAYMENT_METHOD": ErrCodeInvalidInput,
	"INVALID_AMOUNT":         ErrCodeInvalidInput,
	"INVALID_FREQUENCY":      ErrCodeInvalidInput,
	"INVALID_RENT":           ErrCodeInvalidInput,
	"INVALID_CATEGORY":       ErrCodeInvalidInput,
	"INVALID_PERIOD":         ErrCodeInvalidInput,
	"INVALID_ROLE":           ErrCodeInvalidInput,
	"PAYMENT_ALREADY_PAID":   ErrCodeInvalidState,
	"PAYMENT_NOT_PENDING":    ErrCodeInvalidState,
	"INVALID_TICKET_STATE":   ErrCodeInvalidState,
	"ALREADY_DEACTIVATED":    ErrCodeInvalidState,
	"ALREADY_ACTIVE":         ErrCodeInvalidState,
}

// NormalizeErrorCode maps a domain code onto its wire code, passing through
// codes that are already normalized or unknown.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := LegacyErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
