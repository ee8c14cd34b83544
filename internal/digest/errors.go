package digest

import "errors"

// ErrInvalidDigest is returned by Parse for input that is not a
// BLAKE2b-256 digest.
var ErrInvalidDigest = errors.New("invalid digest")
