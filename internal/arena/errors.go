package arena

import "github.com/rotisserie/eris"

var (
	// ErrInvalidUser is returned for an empty user id.
	ErrInvalidUser = eris.New("missing user id")
	// ErrInvalidPoints is returned for a non-positive point award.
	ErrInvalidPoints = eris.New("points must be a positive integer")
	// ErrInvalidLimit is returned for a leaderboard limit over the cap.
	ErrInvalidLimit = eris.New("invalid leaderboard limit")
	// ErrInvalidProfile is returned for a display name outside 1-32 runes.
	ErrInvalidProfile = eris.New("display name must be 1-32 characters")
)
