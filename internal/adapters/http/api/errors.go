package api

import "github.com/rotisserie/eris"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = eris.New("bad request")
	ErrNotFound   = eris.New("not found")
	ErrConflict   = eris.New("conflict")
)

// NewKind tags a sentinel with the operation that raised it.
func NewKind(op string, kind error) error {
	return eris.Wrap(kind, op)
}

// WrapKind attaches an underlying cause to a sentinel kind.
func WrapKind(op string, kind, err error) error {
	return eris.Wrapf(kind, "%s: %v", op, err)
}

// Wrap annotates an upstream error with the operation name.
func Wrap(op string, err error) error {
	return eris.Wrap(err, op)
}
