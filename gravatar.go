package auth

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

const gravatarBaseURL = "https://www.gravatar.com/avatar"

// GravatarURL derives the default avatar for an email address. New accounts
// get this until they upload their own picture.
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = 250
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))

	return fmt.Sprintf("%s/%s?s=%d&d=identicon", gravatarBaseURL, hex.EncodeToString(sum[:]), size)
}
