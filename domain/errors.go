package domain

import "errors"

var (
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")

	// ErrUnknownKey means an operation referenced a token the registry does not track
	ErrUnknownKey = errors.New("unknown listing key")
	// ErrInvalidTransition means the requested action is not legal for the entry's current state
	ErrInvalidTransition = errors.New("invalid listing transition")
	// ErrStaleIdentity means a listing was attempted with an already-used commitment
	ErrStaleIdentity = errors.New("identity commitment already used, rotate first")
	// ErrTransactionFailed means the broadcast succeeded but execution reverted or was rejected
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrNetworkUnavailable means a reconciliation fetch failed; retried on the next tick
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrInvalidSeed means the identity seed is empty or malformed
	ErrInvalidSeed = errors.New("invalid identity seed")
	// ErrNoActiveIdentity means a listing was attempted before any identity was generated
	ErrNoActiveIdentity = errors.New("no active identity, generate one first")

	ErrInvalidAddress      = errors.New("Invalid address")
	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrNotOwner            = errors.New("not owner of the NFT")
)
