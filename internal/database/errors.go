package database

import "errors"

var (
	// ErrShortCodeExists is returned when an insert or rename would
	// reuse a short code that is already taken by another link.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrLinkNotFound is returned when no link matches the given short code.
	ErrLinkNotFound = errors.New("link not found")
)
