package resolve

import (
	"encoding/hex"
	"regexp"
	"strings"
)

// checksumLinePattern matches a "name = hexdigest"-style checksum file line;
// the digest is everything after the last space (spec §6 persisted layout).
var checksumLinePattern = regexp.MustCompile(`.+= [0-9A-Fa-f]+$`)

// ParseChecksumFile extracts the digest from the contents of a checksum
// file: the first non-blank line either matches "<name>= <hex>" (take the
// suffix after the last space), otherwise splits at the first space (take
// the prefix), otherwise is used whole, trimmed (spec §6).
func ParseChecksumFile(contents string) string {
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if checksumLinePattern.MatchString(line) {
			idx := strings.LastIndex(line, " ")
			return line[idx+1:]
		}
		if idx := strings.Index(line, " "); idx >= 0 {
			return line[:idx]
		}
		return line
	}
	return ""
}

// FormatChecksum renders raw digest bytes as lowercase hex with no
// separators (spec §6: "Checksum hex").
func FormatChecksum(digest []byte) string {
	return hex.EncodeToString(digest)
}
