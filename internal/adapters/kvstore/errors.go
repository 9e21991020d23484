package kvstore

import "github.com/rotisserie/eris"

var (
	// ErrNotFound is returned when a key or hash field is absent.
	ErrNotFound = eris.New("key not found")
	// ErrNotInteger is returned when an increment hits a non-numeric value.
	ErrNotInteger = eris.New("value is not an integer")
	// ErrUnavailable marks errors where the store could not serve the
	// call at all, as opposed to answering it.
	ErrUnavailable = eris.New("store unavailable")
)
