package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName checks that an asset name is a bare file name.
// Returns ErrInvalidAssetName if the name is empty, hidden, or contains path
// separators or traversal sequences.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\\x00") || strings.HasPrefix(name, ".") || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
