// Package goerror carries the classification of a failure from the usecase
// layer to the HTTP envelope: a client-safe message, a type that decides the
// log level and a code that decides the status.
package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by stores when no row or key matches.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned by stores on a unique violation.
	ErrConflict = errors.New("resource conflict")
)

// Type is the high-level bucket of an Error.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	}
	return "ERROR_TYPE_UNKNOWN"
}

// Code maps an Error to its HTTP status.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	// CodeInvalidOTP is a passcode that was wrong, expired or already used.
	CodeInvalidOTP
	CodeConflict
	CodeTooManyRequest
)

var codeNames = map[Code]string{
	CodeInternal:       "ERROR_CODE_INTERNAL",
	CodeInvalidFormat:  "ERROR_CODE_INVALID_FORMAT",
	CodeInvalidInput:   "ERROR_CODE_INVALID_INPUT",
	CodeInvalidOTP:     "ERROR_CODE_INVALID_OTP",
	CodeConflict:       "ERROR_CODE_CONFLICT",
	CodeTooManyRequest: "ERROR_CODE_TOO_MANY_REQUESTS",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return codeNames[CodeInternal]
}

// Error wraps an optional cause with the message shown to the client.
// Error() exposes the cause for logs; Msg() is what goes on the wire.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	case e.errType == TypeValidation:
		return "Validation error"
	case e.errType == TypeBusiness:
		return "Request rejected"
	default:
		return "Internal error"
	}
}

// String is the verbose form used when logging with %s.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string { return e.msg }
func (e *Error) Type() Type { return e.errType }
func (e *Error) Code() Code { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error { return e.err }

// StatusCode maps the code to an HTTP status. Malformed bodies, failed field
// validation and rejected passcodes all share 400.
func (e *Error) StatusCode() int {
	switch e.code {
	case CodeInvalidFormat, CodeInvalidInput, CodeInvalidOTP:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func newError(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer hides err behind a generic message.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewServerMessage is NewServer with a custom client message. The message
// must not describe the cause.
func NewServerMessage(err error, msg string) error {
	return newError(err, msg, TypeServer, CodeInternal)
}

func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewBusinessCause keeps cause for errors.Is and logging; only msg reaches
// the client.
func NewBusinessCause(cause error, msg string, code Code) error {
	return newError(cause, msg, TypeBusiness, code)
}

// NewInvalidInput builds a validation error. With a nil err, kv is read as
// field/message pairs; an odd count is treated as a malformed request.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}
	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	fields := make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}

	return &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput, fields: fields}
}

func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return newError(nil, msg, TypeValidation, CodeInvalidFormat)
}
