// file: services/errors.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Kind classifies engine failures so the HTTP layer can pick a status code.
type Kind string

const (
	KindNotFound           Kind = "NotFound"
	KindDuplicateKey       Kind = "DuplicateKey"
	KindInvalidInput       Kind = "InvalidInput"
	KindLeadershipConflict Kind = "LeadershipConflict"
	KindUnexpected         Kind = "Unexpected"
)

// Error is returned by every service operation that fails.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the same kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrDuplicateKey       = &Error{Kind: KindDuplicateKey}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrLeadershipConflict = &Error{Kind: KindLeadershipConflict}
	ErrUnexpected         = &Error{Kind: KindUnexpected}
)

// KindOf returns the kind of err, or KindUnexpected for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) *Error {
	return newError(KindInvalidInput, format, args...)
}

func notFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// storeError classifies an error coming back from gorm.
func storeError(err error, msg string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Msg: msg, Err: err}
	case isDuplicate(err):
		return &Error{Kind: KindDuplicateKey, Msg: msg, Err: err}
	default:
		return &Error{Kind: KindUnexpected, Msg: msg, Err: err}
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
