// Package errors provides the coded errors reflow reports to users.
//
// Every failure the CLI prints or the HTTP API returns carries a [Code].
// Codes fall into a small number of categories ([Kind]), and the category
// alone decides the exit status and the HTTP status:
//
//	INVALID_*      bad documents or options            exit 2, HTTP 400
//	*NOT_FOUND     missing documents or files          exit 3, HTTP 404
//	TIMEOUT        backend deadline exceeded           HTTP 504
//	UNAVAILABLE    backend unreachable                 HTTP 503
//	everything else                                    exit 1, HTTP 500
//
// Validation errors can point at the offending value with [Error.At]:
//
//	err := errors.New(errors.ErrCodeInvalidDocument, "must be finite").At("boxes[3].width")
//	err.Error() // INVALID_DOCUMENT: boxes[3].width: must be finite
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidAlignment Code = "INVALID_ALIGNMENT"
	ErrCodeInvalidSpacing   Code = "INVALID_SPACING"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidDocument  Code = "INVALID_DOCUMENT"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeUnavailable Code = "UNAVAILABLE"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes by how callers react to them.
type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindTimeout
	KindUnavailable
	KindUnsupported
)

// Kind returns the category of c. Unknown codes are internal.
func (c Code) Kind() Kind {
	switch {
	case strings.HasPrefix(string(c), "INVALID_"):
		return KindInvalid
	case strings.HasSuffix(string(c), "NOT_FOUND"):
		return KindNotFound
	case c == ErrCodeTimeout:
		return KindTimeout
	case c == ErrCodeUnavailable:
		return KindUnavailable
	case c == ErrCodeUnsupported:
		return KindUnsupported
	}
	return KindInternal
}

// Error is a coded error. Field, when set, names the offending value
// inside the input, e.g. "spacing" or "boxes[2].height".
type Error struct {
	Code    Code
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// At returns e located at field. A field already set is nested under
// the new one, so At("boxes[1]") on an error at "width" yields
// "boxes[1].width".
func (e *Error) At(field string) *Error {
	out := *e
	switch {
	case field == "":
	case out.Field == "":
		out.Field = field
	default:
		out.Field = field + "." + out.Field
	}
	return &out
}

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with code and a formatted message caused by cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Recode returns err's outermost coded error with its code replaced.
// Uncoded errors are wrapped under code.
func Recode(err error, code Code) error {
	e, ok := find(err)
	if !ok {
		return Wrap(code, err, "%s", err)
	}
	out := *e
	out.Code = code
	return &out
}

func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := find(err)
	return ok && e.Code == code
}

// GetCode returns the outermost code in err's chain, or "" if none.
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// KindOf returns the category of err's code. Uncoded errors are internal.
func KindOf(err error) Kind {
	return GetCode(err).Kind()
}

// IsInvalid reports whether err rejects its input.
func IsInvalid(err error) bool { return KindOf(err) == KindInvalid }

// IsNotFound reports whether err reports a missing resource.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// FieldOf returns the field the outermost coded error points at.
func FieldOf(err error) string {
	if e, ok := find(err); ok {
		return e.Field
	}
	return ""
}

// UserMessage returns the outermost coded error's message, without code,
// field or cause. Uncoded errors return their full text.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

var httpStatus = map[Kind]int{
	KindInternal:    http.StatusInternalServerError,
	KindInvalid:     http.StatusBadRequest,
	KindNotFound:    http.StatusNotFound,
	KindTimeout:     http.StatusGatewayTimeout,
	KindUnavailable: http.StatusServiceUnavailable,
	KindUnsupported: http.StatusNotImplemented,
}

// HTTPStatus returns the status code the API answers err with.
func HTTPStatus(err error) int {
	return httpStatus[KindOf(err)]
}
