// Package apperr classifies failures so request handlers can branch on the cause
// instead of catching everything as a 500.
package apperr

import (
	"net/http"

	"github.com/samber/oops"
)

// Kind is the outcome tag attached to every error that leaves a service.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindUpstream     Kind = "UPSTREAM"
	KindInternal     Kind = "INTERNAL"
)

// Validation reports malformed or missing input.
func Validation(msg string) error {
	return oops.Code(string(KindValidation)).Errorf("%s", msg)
}

// Unauthorized reports a failed authentication check. reason is kept as
// context for logs and metrics and never shown to the caller.
func Unauthorized(msg, reason string) error {
	return oops.Code(string(KindUnauthorized)).With("reason", reason).Errorf("%s", msg)
}

// Forbidden reports an authenticated caller acting on something it does not own.
func Forbidden(msg string) error {
	return oops.Code(string(KindForbidden)).Errorf("%s", msg)
}

// NotFound reports a missing document.
func NotFound(msg string) error {
	return oops.Code(string(KindNotFound)).Errorf("%s", msg)
}

// Conflict reports a uniqueness violation.
func Conflict(msg string) error {
	return oops.Code(string(KindConflict)).Errorf("%s", msg)
}

// Upstream reports a failed call to an external service whose failure the
// caller is told about by name. The cause is kept for logs only.
func Upstream(err error, msg string) error {
	return oops.Code(string(KindUpstream)).With("cause", errString(err)).Errorf("%s", msg)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Internal wraps an infrastructure failure. Errors that already carry a kind
// are returned unchanged so the original classification survives.
func Internal(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := oops.AsOops(err); ok {
		return err
	}
	return oops.Code(string(KindInternal)).Wrapf(err, "%s", msg)
}

// KindOf returns the kind carried by err. Untagged errors are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return KindInternal
	}
	switch oopsErr.Code() {
	case string(KindValidation):
		return KindValidation
	case string(KindUnauthorized):
		return KindUnauthorized
	case string(KindForbidden):
		return KindForbidden
	case string(KindNotFound):
		return KindNotFound
	case string(KindConflict):
		return KindConflict
	case string(KindUpstream):
		return KindUpstream
	default:
		return KindInternal
	}
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Reason returns the reason attached by Unauthorized, or "".
func Reason(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	if r, ok := oopsErr.Context()["reason"].(string); ok {
		return r
	}
	return ""
}

// Message is the text safe to return to a caller.
func Message(err error) string {
	if KindOf(err) == KindInternal {
		return "Internal server error"
	}
	return err.Error()
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
