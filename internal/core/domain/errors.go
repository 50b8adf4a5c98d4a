package domain

import "errors"

var (
	// ErrValidationRejected is returned when a post has no content after trimming.
	ErrValidationRejected = errors.New("post content is empty")
	// ErrTimeout means a remote call exceeded its deadline.
	ErrTimeout = errors.New("remote request timed out")
	// ErrRemoteUnavailable covers bad statuses, transport errors and malformed bodies.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrStorageUnavailable means the key-value backend cannot be used.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrPostNotFound is returned when an operation targets an unknown post id.
	ErrPostNotFound = errors.New("post not found")
)
