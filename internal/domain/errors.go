package domain

import (
	"errors"
	"fmt"
)

// ErrFilmNotFound is returned when a film id matches no document.
var ErrFilmNotFound = errors.New("film not found")

// InvalidParameterError reports a malformed or out-of-range request parameter.
type InvalidParameterError struct {
	Param   string
	Message string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Message)
}

func invalidParam(param, format string, args ...any) *InvalidParameterError {
	return &InvalidParameterError{Param: param, Message: fmt.Sprintf(format, args...)}
}
