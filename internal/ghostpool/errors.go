package ghostpool

import "github.com/rotisserie/eris"

var (
	// ErrInvalidSnapshot is returned for a snapshot missing a score or
	// thumbnail, which a ghost replay cannot do without.
	ErrInvalidSnapshot = eris.New("snapshot requires a positive score and a thumbnail")
)
