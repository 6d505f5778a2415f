package chart

import "errors"

var (
	// ErrSurfaceBusy is returned by Create while a handle is registered for
	// the surface.
	ErrSurfaceBusy = errors.New("surface already holds a chart")
	// ErrUnknownSurface is returned by Release for a surface without a handle.
	ErrUnknownSurface = errors.New("no chart on surface")
)
