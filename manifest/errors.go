package manifest

import "errors"

var (
	// ErrIncompatibleVersion is returned when the manifest version is not supported.
	ErrIncompatibleVersion = errors.New("manifest: incompatible manifest version")

	// ErrNotFound is returned when a graph has no manifest.
	ErrNotFound = errors.New("manifest: not found")

	// ErrConflict is returned when another writer saved the same version first.
	ErrConflict = errors.New("manifest: concurrent save")
)
