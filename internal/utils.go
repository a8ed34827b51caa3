package internal

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Fingerprint returns a stable key for a combination of request parts.
// Parts are trimmed and joined with a separator that cannot appear in user
// text, so ("a b", "c") and ("a", "b c") hash differently.
func Fingerprint(parts ...string) string {
	h := md5.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0x1f})
		}
		h.Write([]byte(strings.TrimSpace(p)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
