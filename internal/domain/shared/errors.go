package shared

// DomainError is the error type raised by domain and application code. The
// Code travels to the HTTP layer, which maps it onto a status and a wire
// error code.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so errors.Is works
// against the sentinels below even when a caller built its own instance.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError builds a DomainError with a caller-supplied code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinel errors shared across bounded contexts. Context-specific failures
// (duplicate email, already paid) are built with NewDomainError at the call
// site instead.
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")

	ErrUnauthorized = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden    = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")

	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")

	ErrInvalidAmount  = NewDomainError("INVALID_AMOUNT", "Amount must be a positive value")
	ErrUnitOccupied   = NewDomainError("UNIT_OCCUPIED", "Unit is already occupied")
	ErrTenantArchived = NewDomainError("TENANT_ARCHIVED", "Tenant record is archived")
)
