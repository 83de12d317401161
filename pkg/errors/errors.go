package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"

	"github.com/angelmondragon/storefront/pkg/enums"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeRejected      Code = "REQUEST_REJECTED"
	CodeRateLimit     Code = "RATE_LIMITED"
	CodeServer        Code = "SERVER_ERROR"
	CodeTransport     Code = "TRANSPORT_ERROR"
	CodeDataIntegrity Code = "DATA_INTEGRITY_ERROR"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// Metadata describes how a code is surfaced: the HTTP status the dev backend
// answers with, and the notification severity the client reports it at.
type Metadata struct {
	HTTPStatus    int
	Severity      enums.Severity
	Retryable     bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:    http.StatusBadRequest,
		Severity:      enums.SeverityWarning,
		Retryable:     false,
		PublicMessage: "validation failed",
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		Severity:      enums.SeverityWarning,
		Retryable:     false,
		PublicMessage: "authentication required",
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		Severity:      enums.SeverityError,
		Retryable:     false,
		PublicMessage: "resource not found",
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		Severity:      enums.SeverityError,
		Retryable:     false,
		PublicMessage: "conflict detected",
	},
	CodeRejected: {
		HTTPStatus:    http.StatusBadRequest,
		Severity:      enums.SeverityError,
		Retryable:     false,
		PublicMessage: "request rejected",
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		Severity:      enums.SeverityWarning,
		Retryable:     true,
		PublicMessage: "too many requests",
	},
	CodeServer: {
		HTTPStatus:    http.StatusInternalServerError,
		Severity:      enums.SeverityError,
		Retryable:     true,
		PublicMessage: "server error",
	},
	CodeTransport: {
		HTTPStatus:    http.StatusServiceUnavailable,
		Severity:      enums.SeverityError,
		Retryable:     true,
		PublicMessage: "backend unreachable",
	},
	CodeDataIntegrity: {
		HTTPStatus:    http.StatusInternalServerError,
		Severity:      enums.SeverityError,
		Retryable:     false,
		PublicMessage: "inconsistent data",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Severity:      enums.SeverityError,
		Retryable:     true,
		PublicMessage: "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	reason  enums.RejectionReason
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

// Reject builds a validation-class error carrying a rejection reason.
func Reject(reason enums.RejectionReason, message string) *Error {
	return &Error{code: CodeValidation, reason: reason, message: message}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

// Reason returns the rejection reason, empty when none was attached.
func (e *Error) Reason() enums.RejectionReason {
	if e == nil {
		return ""
	}
	return e.reason
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) WithReason(reason enums.RejectionReason) *Error {
	if e == nil {
		return nil
	}
	e.reason = reason
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.reason != "" {
		return fmt.Sprintf("%s(%s): %s", e.code, e.reason, e.message)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code of the first typed error in the chain, or
// CodeInternal for untyped errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// ReasonOf returns the rejection reason of the first typed error in the chain.
func ReasonOf(err error) enums.RejectionReason {
	return As(err).Reason()
}
