package types

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrCode string

const (
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrNotFound   ErrCode = "NOT_FOUND"
	ErrAuth       ErrCode = "AUTH_ERROR"
	ErrConflict   ErrCode = "CONFLICT"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() ErrCode { return e.code }

func makeErr(code ErrCode, format string, args ...any) error {
	return &codedError{code: code, msg: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...any) error {
	return makeErr(ErrValidation, format, args...)
}

func NewNotFoundError(format string, args ...any) error {
	return makeErr(ErrNotFound, format, args...)
}

func NewAuthError(format string, args ...any) error {
	return makeErr(ErrAuth, format, args...)
}

func NewConflictError(format string, args ...any) error {
	return makeErr(ErrConflict, format, args...)
}

// Code extracts the ErrCode carried by err, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

func HTTPStatus(err error) int {
	switch Code(err) {
	case ErrValidation:
		return http.StatusUnprocessableEntity
	case ErrNotFound:
		return http.StatusNotFound
	case ErrAuth:
		return http.StatusUnauthorized
	case ErrConflict:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}
