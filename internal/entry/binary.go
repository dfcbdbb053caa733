package entry

import (
	"github.com/gabriel-vasile/mimetype"
)

// IsLikelyBinary sniffs the file header to decide whether path holds
// binary content. Detection errors count as binary so callers fall back
// to the hex preview rather than dumping garbage.
func IsLikelyBinary(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return true
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return false
		}
	}
	return !isTextual(mtype.String())
}

func isTextual(mime string) bool {
	switch mime {
	case "application/json", "application/xml", "application/javascript",
		"application/x-sh", "application/x-shellscript", "image/svg+xml":
		return true
	}
	return false
}
