package dictionary

import "errors"

var (
	// ErrWordExists is returned by ProposeAdd when the word is already defined.
	ErrWordExists = errors.New("word already exists")
	// ErrWordNotFound is returned by ProposeUpdate when the word is not defined.
	ErrWordNotFound = errors.New("word not found")
	// ErrProposalNotFound is returned by Approve and Reject for unknown or
	// already consumed proposal IDs.
	ErrProposalNotFound = errors.New("request not found")
	// ErrEmptyField is returned when a word or meaning is empty after trimming.
	ErrEmptyField = errors.New("word and meaning cannot be empty")
)
