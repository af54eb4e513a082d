package domain

import "errors"

var (
	// ErrProtocol covers malformed or unexpected client messages.
	// The connection stays open; only the sender learns about it.
	ErrProtocol = errors.New("protocol error")

	// ErrValidation covers messages that parse but miss required fields.
	ErrValidation = errors.New("missing or invalid field")

	// ErrUnavailable wraps store I/O failures. A mutation that hits it
	// must leave room state exactly as it was.
	ErrUnavailable = errors.New("store unavailable")

	// ErrNotFound means the referenced stream or vote no longer exists.
	ErrNotFound = errors.New("not found")
)
