package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrUnauthenticated indicates the session token is missing or rejected
	ErrUnauthenticated = errors.New("session is not authenticated")

	// ErrNotFound indicates the requested content does not exist
	ErrNotFound = errors.New("content not found")

	// ErrEmptyComment indicates a comment body with no visible characters
	ErrEmptyComment = errors.New("comment body is empty")
)
