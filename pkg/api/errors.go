package api

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Error of API has HTTP status code and a message for client
type Error interface {
	Error() string
	Code() int
	Message() string
	Cause() error
}

type baseError struct {
	Err  error
	Msg  string
	Code int
}

func (x *baseError) Message() string {
	if x.Msg != "" {
		return x.Msg
	}
	return x.Err.Error()
}

func (x *baseError) Cause() error {
	return x.Err
}

type userError struct{ baseError }

func (x *userError) Error() string { return "UserError: " + x.Message() }
func (x *userError) Code() int {
	if x.baseError.Code > 0 {
		return x.baseError.Code
	}
	return http.StatusBadRequest
}

func wrapUserError(err error, code int, msg string) Error {
	return &userError{
		baseError: baseError{
			Err:  errors.Wrap(err, msg),
			Msg:  msg,
			Code: code,
		},
	}
}

func newUserErrorf(code int, msg string, args ...interface{}) Error {
	return &userError{
		baseError: baseError{
			Msg:  fmt.Sprintf(msg, args...),
			Code: code,
		},
	}
}

type systemError struct{ baseError }

func (x *systemError) Error() string {
	if x.Err == nil {
		return "SystemError: " + x.Msg
	}
	return "SystemError: " + x.Msg + ": " + x.Err.Error()
}
func (x *systemError) Code() int {
	if x.baseError.Code > 0 {
		return x.baseError.Code
	}
	return http.StatusInternalServerError
}

// wrapSystemError hides detail of err from client
func wrapSystemError(err error, code int, msg string) Error {
	return &systemError{
		baseError: baseError{
			Err:  err,
			Msg:  msg,
			Code: code,
		},
	}
}
