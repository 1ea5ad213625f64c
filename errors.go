package pixelwork

import "errors"

// Error kinds surfaced by every stage. Callers test for them with errors.Is;
// the concrete cause is wrapped underneath.
var (
	ErrDecode    = errors.New("decode failure")
	ErrSurface   = errors.New("raster surface unavailable")
	ErrSerialize = errors.New("serialization failure")
	ErrCapture   = errors.New("capture failure")
	ErrMaskLoad  = errors.New("mask load failure")
	ErrEmpty     = errors.New("no frames")
	ErrInvalid   = errors.New("invalid parameter")
)
