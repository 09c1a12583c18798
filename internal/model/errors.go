package model

import "errors"

var (
	// ErrInvalidReference means the input matched neither a bare
	// identifier nor a recognized album/gallery URL.
	ErrInvalidReference = errors.New("invalid album reference")

	// ErrAlbumNotFound means the lookup endpoint reported no such post.
	ErrAlbumNotFound = errors.New("album not found")

	// ErrTransient covers network failures and 5xx responses during
	// catalog lookup; retrying the run may succeed.
	ErrTransient = errors.New("transient lookup failure")

	// ErrMalformedResponse means the lookup response could not be
	// decoded into the expected media list shape.
	ErrMalformedResponse = errors.New("malformed lookup response")
)
