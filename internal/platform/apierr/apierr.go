package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	CodeUnauthenticated    = "unauthenticated"
	CodeNotFound           = "not_found"
	CodeForbidden          = "forbidden"
	CodeSelfActionRejected = "self_action_rejected"
	CodeProfileRequired    = "profile_required"
	CodeValidationFailed   = "validation_failed"
	CodeConflict           = "conflict"
	CodeInternal           = "internal"
)

// Error is the request-level failure carried from services up to handlers.
// Redirect, when set, tells the handler to resolve the failure as a
// redirect envelope instead of an error status.
type Error struct {
	Status   int
	Code     string
	Redirect string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Unauthenticated(msg string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthenticated, errors.New(msg))
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, CodeNotFound, errors.New(msg))
}

// NotFoundRedirect is a not-found that resolves to a redirect rather than
// an error page, e.g. leaving a conversation that no longer exists.
func NotFoundRedirect(msg, redirect string) *Error {
	e := NotFound(msg)
	e.Redirect = redirect
	return e
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New(msg))
}

func SelfActionRejected(redirect string) *Error {
	e := New(http.StatusSeeOther, CodeSelfActionRejected, errors.New("action on self rejected"))
	e.Redirect = redirect
	return e
}

func ProfileRequired(redirect string) *Error {
	e := New(http.StatusSeeOther, CodeProfileRequired, errors.New("player profile required"))
	e.Redirect = redirect
	return e
}

func Validation(msg string) *Error {
	return New(http.StatusBadRequest, CodeValidationFailed, errors.New(msg))
}

func Conflict(msg string) *Error {
	return New(http.StatusConflict, CodeConflict, errors.New(msg))
}

// As unwraps err to an *Error when one is in the chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf extracts the machine code from err, or CodeInternal.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return CodeInternal
}

func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// IsDuplicateKey reports whether err is a storage unique-constraint
// violation, across the gorm translation and the raw pgx error.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.TrimSpace(pgErr.Code) == "23505" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

// Wrap maps infrastructure errors into the taxonomy; an *Error passes
// through untouched.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return New(http.StatusNotFound, CodeNotFound, err)
	}
	if IsDuplicateKey(err) {
		return New(http.StatusConflict, CodeConflict, err)
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}
