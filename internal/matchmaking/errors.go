package matchmaking

import "github.com/rotisserie/eris"

var (
	// ErrInvalidUser is returned for an empty user id.
	ErrInvalidUser = eris.New("invalid user id")
	// ErrInvalidScore is returned for a score outside 0..100.
	ErrInvalidScore = eris.New("invalid score")
	// ErrInvalidMode is returned for an unknown battle mode tag.
	ErrInvalidMode = eris.New("invalid mode")
)
