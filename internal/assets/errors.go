package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrAssetNotFound indicates the requested asset does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrInvalidAssetName indicates the asset name contains path separators,
	// a leading dot, or other characters unsafe for lookup.
	ErrInvalidAssetName = errors.New("invalid asset name")
)
