package auth

import "errors"

var (
	// ErrInvalidAssertion marks an identity assertion that is malformed,
	// carries a bad signature, an untrusted issuer or the wrong audience.
	ErrInvalidAssertion = errors.New("invalid assertion")

	// ErrExpiredAssertion marks an identity assertion whose validity window has passed.
	ErrExpiredAssertion = errors.New("expired assertion")

	// ErrTokenInvalid marks a session token that is malformed or fails signature verification.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired marks a session token past its encoded expiry.
	ErrTokenExpired = errors.New("expired token")

	// ErrUnavailable marks an authentication attempt that failed
	// because persistence was unreachable, not because of the caller.
	ErrUnavailable = errors.New("authentication unavailable")
)
