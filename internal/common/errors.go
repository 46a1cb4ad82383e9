// Package common defines shared constants and sentinel errors used across
// the store, ledger and API layers of FieldLog. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrStore marks a transient failure of the backing store (query or write
	// rejected). It is never fatal for the derived snapshot.
	ErrStore = errors.New("store failure")

	// ErrPartialWrite is returned when the first write of a two-write
	// sequence succeeded and the second one failed.
	ErrPartialWrite = errors.New("partial write")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Ledger errors.
	ErrUnknownPhase  = errors.New("current phase is not part of the vocabulary")
	ErrUnknownCode   = errors.New("movement code is not part of the vocabulary")
	ErrUnknownVerb   = errors.New("unknown tape verb")
	ErrNoDeployment  = errors.New("no active deployment")
	ErrNoTape        = errors.New("no active tape")
	ErrReadOnly      = errors.New("record is read-only")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidMode   = errors.New("invalid mode")
	ErrInvalidInput  = errors.New("invalid input")
)
