// Package shortid generates and validates the opaque request identifiers
// embedded on-chain as workCID values. The format is nanoid-compatible:
// 21 characters drawn from A-Za-z0-9_- so existing requests stay linkable.
package shortid

import (
	"crypto/rand"
	"regexp"

	"devhours-api/internal/pkg/errs"
)

const (
	Length   = 21
	alphabet = "useandom-26T198340PX75pxJACKVERYMINDBUSHWOLF_GQZbfghjklqvwyzrict"
)

var pattern = regexp.MustCompile(`^[A-Za-z0-9_-]{21}$`)

// New returns a fresh 21-character identifier.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", errs.Wrap(err, "failed to read random bytes for shortid")
	}
	id := make([]byte, Length)
	for i, b := range buf {
		// alphabet is 64 characters, so masking keeps the distribution uniform
		id[i] = alphabet[b&63]
	}
	return string(id), nil
}

// IsValid reports whether s has the exact opaque-ID shape. Free-form workCID
// strings (IPFS URIs, prose) fail this check and are never treated as
// request identifiers.
func IsValid(s string) bool {
	return pattern.MatchString(s)
}
