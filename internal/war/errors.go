package war

import "github.com/rotisserie/eris"

var (
	// ErrInvalidAlliance is returned for an alliance id outside the six.
	ErrInvalidAlliance = eris.New("invalid alliance")
	// ErrInvalidUser is returned for an empty user id.
	ErrInvalidUser = eris.New("invalid user id")
	// ErrInvalidScore is returned for a raw score outside 0..100.
	ErrInvalidScore = eris.New("invalid score")
	// ErrInvalidMode is returned for an unknown battle mode tag.
	ErrInvalidMode = eris.New("invalid mode")
	// ErrAlreadyJoined is returned when the user holds a membership in
	// the current war. Membership is exclusive for the whole season.
	ErrAlreadyJoined = eris.New("already joined an alliance this war")
	// ErrNotMember is returned when a contribution arrives from a user
	// with no membership in the current war.
	ErrNotMember = eris.New("not a member of any alliance")
	// ErrWrongAlliance is returned when a contribution names an
	// alliance other than the one the user joined.
	ErrWrongAlliance = eris.New("contribution for a different alliance")
	// ErrNotFinalized is returned when results are requested for a day
	// that has not been finalized yet.
	ErrNotFinalized = eris.New("day not finalized")
)
