package model

import "errors"

// Errors returned by the store and the transaction engines. Callers match
// them with errors.Is; the wrapped message names the id or rule involved.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrUnavailable      = errors.New("no copies available")
	ErrMemberIneligible = errors.New("member not eligible to borrow")
	ErrAlreadyReturned  = errors.New("borrowing already returned")

	// ErrConsistency marks a post-write invariant failure. It means the
	// transaction passed its preconditions but the result was still invalid,
	// which points at a concurrency-control bug rather than bad input.
	ErrConsistency = errors.New("internal consistency fault")
)
