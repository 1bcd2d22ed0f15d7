package apperr

import "errors"

// Kind is the category of a domain error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	// KindSecurityRejection marks input rejected before it was parsed, e.g. a bad webhook signature.
	KindSecurityRejection Kind = "security_rejection"
	// KindPolicyRejection marks requests that are well-formed but not allowed by the catalog or provider.
	KindPolicyRejection Kind = "policy_rejection"
	// KindInternal is reported for errors that carry no domain kind.
	KindInternal Kind = "internal"
)

// Error is a domain error with a stable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

// New creates a domain error. It is meant for package-level sentinels.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// KindOf returns the kind of the first *Error found in err's chain.
// Errors without a domain kind report KindInternal; nil reports an empty Kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error found in err's chain, or an empty string.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
