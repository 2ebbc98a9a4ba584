package settings

import (
	"path/filepath"
	"strings"
)

// knownPasswords maps archive base names (lower case, no extension) to the
// passwords their titles shipped with. The list only covers titles whose
// passwords were published by the vendor or recovered by the community.
var knownPasswords = map[string]string{
	"script":    "EMIKO",
	"image":     "EMIKO",
	"sound":     "EMIKO",
	"cotopha":   "Cotopha",
	"systemnoa": "EntisGLS",
}

// ResolvePassword looks up a published password for the archive at path.
// The second result is false when the title is not in the table.
func ResolvePassword(path string) (string, bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	pw, ok := knownPasswords[strings.ToLower(base)]
	return pw, ok
}
