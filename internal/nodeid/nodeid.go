// internal/nodeid/nodeid.go
package nodeid

import (
	"fmt"
	"strings"
	"unicode"
)

// Validate checks that rawID is usable as a node, edge or task identifier.
// Identifiers are opaque, but they must be non-empty and free of whitespace
// and control characters so they survive round trips through argv, HCL
// labels and log lines.
func Validate(rawID string) error {
	if rawID == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	for i, r := range rawID {
		if unicode.IsSpace(r) {
			return fmt.Errorf("identifier %q contains whitespace at offset %d", rawID, i)
		}
		if unicode.IsControl(r) {
			return fmt.Errorf("identifier %q contains a control character at offset %d", rawID, i)
		}
	}
	return nil
}

// Normalize trims surrounding whitespace from a user-supplied identifier.
func Normalize(rawID string) string {
	return strings.TrimSpace(rawID)
}
