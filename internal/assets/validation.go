package assets

import "fmt"

// maxAssetNameLength bounds style and template names.
const maxAssetNameLength = 64

// ValidateAssetName checks that name can be used as a file name under a
// loader's base directory. Only ASCII letters, digits, '-' and '_' are
// accepted, which rules out separators, dots and traversal.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > maxAssetNameLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrInvalidAssetName, len(name), maxAssetNameLength)
	}
	for _, r := range name {
		if r != '-' && r != '_' && (r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return nil
}
