package onesecmail

import (
	"errors"

	"github.com/onesecmail/client-go/internal/apierrors"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")

	// ErrTransport is matched by every TransportError.
	ErrTransport = apierrors.ErrTransport

	// ErrMalformedResponse is matched by every ValidationError.
	ErrMalformedResponse = apierrors.ErrMalformedResponse

	// ErrOutOfRange is matched by every RangeError.
	ErrOutOfRange = apierrors.ErrOutOfRange

	// ErrInvalidAddress is returned when an address is not a valid email address.
	ErrInvalidAddress = apierrors.ErrInvalidAddress

	// ErrForbiddenLogin is returned when an address uses a reserved login.
	ErrForbiddenLogin = apierrors.ErrForbiddenLogin

	// ErrUnsupportedDomain is returned when an address is on a domain the
	// provider does not serve.
	ErrUnsupportedDomain = apierrors.ErrUnsupportedDomain

	// ErrMessageNotFound is returned when a message no longer exists.
	ErrMessageNotFound = apierrors.ErrMessageNotFound

	// ErrAttachmentNotFound is returned when an attachment no longer exists.
	ErrAttachmentNotFound = apierrors.ErrAttachmentNotFound
)

// OneSecMailError is implemented by all typed errors of this package.
type OneSecMailError interface {
	error
	OneSecMailError() // marker method
}

// TransportError represents a failed HTTP exchange: connection failure,
// timeout, abort or a non-2xx status.
type TransportError = apierrors.TransportError

// ValidationError reports a provider response that does not have the
// expected shape.
type ValidationError = apierrors.ValidationError

// RangeError reports an argument outside its allowed range. It is always
// returned before any network access.
type RangeError = apierrors.RangeError

// AddressError reports an address that cannot be opened as a mailbox.
type AddressError = apierrors.AddressError

var (
	_ OneSecMailError = (*TransportError)(nil)
	_ OneSecMailError = (*ValidationError)(nil)
	_ OneSecMailError = (*RangeError)(nil)
	_ OneSecMailError = (*AddressError)(nil)
)
