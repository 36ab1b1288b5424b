package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrItemNotFound indicates the requested record number is outside the cache
	ErrItemNotFound = errors.New("item not found")

	// ErrNoRuntimeDir indicates no runtime directory could be derived:
	// none was configured and neither $XDG_DATA_HOME nor $HOME is set
	ErrNoRuntimeDir = errors.New("could not determine runtime directory")

	// ErrInvalidListing indicates a listing file could not be decoded
	ErrInvalidListing = errors.New("invalid item listing")
)
