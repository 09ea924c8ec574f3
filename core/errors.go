package core

import "errors"

var (
	// ErrKeyNotFound is returned by Remove when the key has no live value.
	ErrKeyNotFound = errors.New("Key not found")

	// ErrInconsistentIndex means the KeyDir points at something other than
	// the Set record it expects. It indicates a bug or a corrupted datafile.
	ErrInconsistentIndex = errors.New("index does not match datafile")

	// ErrStoreClosed is returned by operations on a Store after Close.
	ErrStoreClosed = errors.New("store is closed")
)
