package rag

import "errors"

var (
	// ErrInvalidInput rejects malformed caller input (empty query, negative
	// distance) before any collaborator is contacted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMaxRetriesExceeded reports that the correction loop hit its cycle
	// bound. The accompanying Result still carries the last answer, flagged
	// Unverified.
	ErrMaxRetriesExceeded = errors.New("max correction cycles exceeded")
)
