package domain

import (
	"errors"
	"fmt"
)

// DomainError is an error with a stable code that clients can match on.
//
// Codes read FX-<AREA>-<NNNN>. The first three digits of NNNN are the HTTP
// status the error is served with, the last one tells errors of the same
// status apart.
type DomainError struct {
	Code    string
	Message string

	// Details is shown to clients after the message.
	Details string

	// Cause is logged but never sent to clients.
	Cause error
}

// NewDomainError returns a DomainError without details or cause.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code, so a copy made by
// WithDetails or WithCause still matches its sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy carrying details.
func (e *DomainError) WithDetails(details string) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCause returns a copy wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Token errors.
var (
	// ErrTokenInvalid covers every decode failure. The cause names the
	// specific failure for logs.
	ErrTokenInvalid  = NewDomainError("FX-TOKN-4000", "invalid or corrupted token")
	ErrUnknownKind   = NewDomainError("FX-TOKN-4001", "unknown artwork kind")
	ErrInvalidParams = NewDomainError("FX-TOKN-4002", "invalid artwork parameters")
)

// Access errors.
var (
	ErrInvalidEmail   = NewDomainError("FX-ACCS-4001", "invalid email address")
	ErrAccessRequired = NewDomainError("FX-ACCS-4020", "export requires purchased access")
	ErrAdminRequired  = NewDomainError("FX-ACCS-4030", "admin credentials required")
	ErrGrantNotFound  = NewDomainError("FX-ACCS-4040", "access grant not found")
)

// Payment errors.
var (
	// ErrSignatureInvalid also covers timestamps outside the tolerance.
	ErrSignatureInvalid    = NewDomainError("FX-PAY-4001", "invalid webhook signature")
	ErrPaymentEventInvalid = NewDomainError("FX-PAY-4002", "malformed payment event")
)

// System errors.
var (
	ErrBadRequest          = NewDomainError("FX-SYS-4000", "bad request")
	ErrRateLimited         = NewDomainError("FX-SYS-4290", "too many requests")
	ErrInternalServer      = NewDomainError("FX-SYS-5000", "internal server error")
	ErrStorageError        = NewDomainError("FX-SYS-5001", "storage error")
	ErrSealingUnavailable  = NewDomainError("FX-SYS-5030", "export sealing is not configured")
	ErrPaymentsUnavailable = NewDomainError("FX-SYS-5031", "payment webhooks are not configured")
)
