package domain

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Kind classifies an Error. Callers switch on the kind rather than on concrete types.
type Kind int

const (
	KindDatabase Kind = iota // zero value: anything we could not classify
	KindValidation
	KindAuthentication
	KindNotFound
	KindConflict
	KindInsufficientFunds
	KindBlacklisted
	KindExternalService
)

var kindNames = map[Kind]string{
	KindDatabase:          "DatabaseError",
	KindValidation:        "ValidationError",
	KindAuthentication:    "AuthenticationError",
	KindNotFound:          "NotFoundError",
	KindConflict:          "ConflictError",
	KindInsufficientFunds: "InsufficientFundsError",
	KindBlacklisted:       "BlacklistError",
	KindExternalService:   "ExternalServiceError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UnknownError"
}

// Status maps the kind to the HTTP status it is reported with.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindInsufficientFunds:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindBlacklisted:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Operational reports whether errors of this kind are expected outcomes of client input
// or business rules. Non-operational kinds are logged and shown to clients generically.
func (k Kind) Operational() bool {
	return k != KindDatabase && k != KindExternalService
}

// Error is the single error type crossing the service boundary.
type Error struct {
	Kind      Kind
	Message   string
	Details   []string // individual validation failures
	Retryable bool
	Err       error // underlying cause, never shown to clients
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Details) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Details, "; "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and, when the target carries one, the same
// message. This keeps errors.Is(err, ErrInsufficientFunds) working after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for the outcomes the store and services produce most often.
var (
	ErrInvalidAmount      = &Error{Kind: KindValidation, Message: "invalid amount"}
	ErrInsufficientFunds  = &Error{Kind: KindInsufficientFunds, Message: "insufficient funds"}
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Message: "invalid credentials"}
	ErrInvalidPassword    = &Error{Kind: KindAuthentication, Message: "invalid password"}
	ErrSelfTransfer       = &Error{Kind: KindValidation, Message: "cannot transfer to your own wallet"}
)

func newKind(kind Kind, msg string, details ...string) *Error {
	return &Error{Kind: kind, Message: msg, Details: details}
}

// Validation returns a ValidationError carrying every failure in details.
func Validation(msg string, details ...string) *Error {
	return newKind(KindValidation, msg, details...)
}

// NotFound returns a NotFoundError for the named resource.
func NotFound(what string) *Error { return newKind(KindNotFound, what+" not found") }

// Conflict returns a ConflictError.
func Conflict(msg string) *Error { return newKind(KindConflict, msg) }

// Blacklisted returns a BlacklistError.
func Blacklisted(msg string) *Error { return newKind(KindBlacklisted, msg) }

// ExternalService wraps a collaborator failure.
func ExternalService(msg string, err error) *Error {
	return &Error{Kind: KindExternalService, Message: msg, Err: err}
}

// Database wraps a store failure. Deadline and cancellation errors are retryable.
func Database(msg string, err error) *Error {
	return &Error{
		Kind:      KindDatabase,
		Message:   msg,
		Retryable: errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled),
		Err:       err,
	}
}

// Wrap passes known errors through and turns anything else into a DatabaseError.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Database(msg, err)
}

// KindOf reports the kind of err. Unclassified errors are KindDatabase.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDatabase
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
