package assets

import (
	"regexp"
	"strings"

	"github.com/darmiel/rtcmint/internal/core"
)

// filenamePattern is the allow-list for requested asset names. It admits no path
// separators, so a valid name always refers to an entry directly inside the class base.
var filenamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateFilename checks name against the allow-list and the required extension.
// It runs before any store access.
func ValidateFilename(name, extension string) error {
	if !filenamePattern.MatchString(name) {
		return core.ClientInput("Invalid filename")
	}
	if !strings.HasSuffix(name, extension) || len(name) == len(extension) {
		return core.ClientInput("Invalid filename: expected a " + extension + " file")
	}
	return nil
}
