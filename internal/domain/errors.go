package domain

import "errors"

var (
	// ErrNotFound is returned when the API has no entity under the given id.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized is returned when the session token was rejected.
	ErrUnauthorized = errors.New("session expired or unauthorized")
	// ErrValidation is returned for any other 4xx answer from the API.
	ErrValidation = errors.New("request rejected by api")
	// ErrServer is returned for 5xx answers.
	ErrServer = errors.New("api server error")
	// ErrTransport indicates no response was received.
	ErrTransport = errors.New("api unreachable")
	// ErrInvalidCredentials is returned by login for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSession is returned by token stores holding no session.
	ErrNoSession = errors.New("no stored session")
	// ErrUnknownResource indicates a resource name outside the catalog.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrInvalidInput is returned when form input cannot be coerced to its field type.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNothingPending is returned when confirming without a pending operation.
	ErrNothingPending = errors.New("nothing pending")
)
