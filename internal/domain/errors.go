package domain

import "errors"

var (
	// ErrInvalidArgument signals malformed caller input to a store operation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownAction signals an intent action the executor cannot dispatch.
	ErrUnknownAction = errors.New("unknown action")
	// ErrClassifierUnavailable signals that no classifier capability is configured.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	// ErrClassifierFailure signals a failed or undecodable classifier response.
	ErrClassifierFailure = errors.New("classifier failure")
)
