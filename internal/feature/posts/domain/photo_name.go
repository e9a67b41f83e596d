package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// fallbackName is used when nothing of the client filename survives sanitizing.
const fallbackName = "photo"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces a client-supplied filename to a safe ASCII basename.
// Path separators become spaces, whitespace runs become "_", and anything outside
// [A-Za-z0-9_.-] is dropped along with leading/trailing dots and underscores.
func SanitizeFilename(name string) string {
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" {
		return fallbackName
	}
	return name
}

// StoredName returns a unique server-side name: "<uuid>_<sanitized name>".
func StoredName(original string) string {
	return uuid.NewString() + "_" + SanitizeFilename(original)
}
