// Package apierrors provides shared error types for the 1secmail client.
package apierrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrTransport is matched by every TransportError.
	ErrTransport = errors.New("HTTP request failed")

	// ErrMalformedResponse is matched by every ValidationError.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrOutOfRange is matched by every RangeError.
	ErrOutOfRange = errors.New("argument out of range")

	// ErrInvalidAddress is returned when an email address is not syntactically valid.
	ErrInvalidAddress = errors.New("email address must be a valid email address")

	// ErrForbiddenLogin is returned when the local part is a reserved login.
	ErrForbiddenLogin = errors.New("reserved login cannot be read")

	// ErrUnsupportedDomain is returned when the domain is not served by the provider.
	ErrUnsupportedDomain = errors.New("domain is not served by the provider")

	// ErrMessageNotFound is returned when a message no longer exists.
	ErrMessageNotFound = errors.New("message no longer exists")

	// ErrAttachmentNotFound is returned when an attachment no longer exists.
	ErrAttachmentNotFound = errors.New("file no longer exists")
)

// TransportError represents a failed HTTP exchange: connection failure,
// timeout, abort or a non-2xx status.
type TransportError struct {
	Action     string
	StatusCode int // zero when no response was received
	Attempts   int
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(ErrTransport.Error())
	if e.Action != "" {
		fmt.Fprintf(&b, " (%s)", e.Action)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Attempts > 1 {
		fmt.Fprintf(&b, " after %d attempts", e.Attempts)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// OneSecMailError implements the OneSecMailError interface.
func (e *TransportError) OneSecMailError() {}

// ValidationError reports a response body that does not match the shape
// expected for its action. Errors lists each violation by JSON path.
type ValidationError struct {
	Action string
	Errors []string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := ErrMalformedResponse.Error()
	if e.Action != "" {
		msg += " (" + e.Action + ")"
	}
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s: %s", msg, strings.Join(e.Errors, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying decode error, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *ValidationError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// OneSecMailError implements the OneSecMailError interface.
func (e *ValidationError) OneSecMailError() {}

// RangeError reports a caller argument outside its contract. It is always
// returned before any network access.
type RangeError struct {
	Param      string
	Constraint string
	Value      any
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("`%s` %s, got %v", e.Param, e.Constraint, e.Value)
}

// Is implements errors.Is for sentinel error matching.
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// OneSecMailError implements the OneSecMailError interface.
func (e *RangeError) OneSecMailError() {}

// AddressError reports an address that cannot be adopted as a mailbox.
// Reason is one of ErrInvalidAddress, ErrForbiddenLogin or ErrUnsupportedDomain.
type AddressError struct {
	Address string
	Reason  error
	// Related lists the addresses the reason refers to: the reserved
	// addresses for ErrForbiddenLogin, or the local part on every served
	// domain for ErrUnsupportedDomain.
	Related []string
}

func (e *AddressError) Error() string {
	if len(e.Related) > 0 {
		return fmt.Sprintf("%q: %v: %s", e.Address, e.Reason, strings.Join(e.Related, ", "))
	}
	return fmt.Sprintf("%q: %v", e.Address, e.Reason)
}

// Unwrap returns the reason.
func (e *AddressError) Unwrap() error {
	return e.Reason
}

// OneSecMailError implements the OneSecMailError interface.
func (e *AddressError) OneSecMailError() {}
