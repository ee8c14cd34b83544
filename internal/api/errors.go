package api

import "github.com/onesecmail/client-go/internal/apierrors"

// Error kinds returned by the API client.
type (
	TransportError  = apierrors.TransportError
	ValidationError = apierrors.ValidationError
	RangeError      = apierrors.RangeError
)

// Sentinel errors that can be checked with errors.Is.
var (
	ErrTransport         = apierrors.ErrTransport
	ErrMalformedResponse = apierrors.ErrMalformedResponse
	ErrOutOfRange        = apierrors.ErrOutOfRange
)
