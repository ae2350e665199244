package session

import "errors"

var (
	// ErrNoSession indicates the request carries no session info.
	// Returned by Parser.Get when the cookie is absent or malformed;
	// never a fault.
	ErrNoSession = errors.New("session.no_session")

	// ErrSessionInvalid is the soft-failure outcome: the session info was
	// expired, tampered with, or unknown to the store. Recoverable by
	// creating a new session.
	ErrSessionInvalid = errors.New("session.invalid")

	// ErrStoreFault marks hard failures: cryptographic or storage-layer
	// errors that cannot be recovered within the request. Store
	// implementations wrap it so callers can match with errors.Is.
	ErrStoreFault = errors.New("session.store_fault")

	// ErrSessionUnbound is returned by lifecycle operations invoked on a
	// Session that has no bound identity (before middleware resolution or
	// after Destroy).
	ErrSessionUnbound = errors.New("session.unbound")

	// ErrSecretTooShort indicates the cookie store secret is too weak
	ErrSecretTooShort = errors.New("session.secret_too_short")
)
