package evidence

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// idPattern constrains identifiers to filename-safe characters on every
// supported platform.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// reservedNames are Windows device names that are invalid as filenames
// regardless of extension. Matched case-insensitively.
var reservedNames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// NormalizeID validates a caller-supplied bundle identifier, or generates
// a fresh UUID when the candidate is empty. It has no side effects.
//
// A candidate is rejected when it is blank after trimming, fails the
// identifier pattern, contains '.' or ':', or matches a reserved Windows
// device name case-insensitively.
func NormalizeID(candidate string) (string, error) {
	if candidate == "" {
		return uuid.New().String(), nil
	}

	id := strings.TrimSpace(candidate)
	if id == "" {
		return "", NewValidationError("identifier", candidate, "identifier is empty")
	}

	// Checked before the pattern so path traversal attempts get a
	// precise rejection reason.
	if strings.ContainsAny(id, ".:") {
		return "", NewValidationError("identifier", candidate, "identifier must not contain '.' or ':'")
	}

	if !idPattern.MatchString(id) {
		return "", NewValidationError("identifier", candidate, "identifier must match ^[A-Za-z0-9_-]{1,64}$")
	}

	if _, reserved := reservedNames[strings.ToLower(id)]; reserved {
		return "", NewValidationError("identifier", candidate, "identifier is a reserved device name")
	}

	return id, nil
}
