// Package availability holds the errors drivers report when a device cannot be used.
package availability

import (
	"errors"
)

var (
	ErrUnimplemented = NewError("not implemented")
	ErrBusy          = NewError("device or resource busy")
	ErrNoDevice      = NewError("no such device")
)

type errorString struct {
	s string
}

// NewError creates an availability error. IsError reports true for it and for any
// error wrapping it.
func NewError(text string) error {
	return &errorString{text}
}

// IsError reports whether err says the device is unavailable.
func IsError(err error) bool {
	var target *errorString
	return errors.As(err, &target)
}

func (e *errorString) Error() string {
	return e.s
}

// ErrPermissionDenied is reported when the host refuses access to the device.
var ErrPermissionDenied = NewError("permission denied")
