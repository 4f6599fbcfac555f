package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultSize    = 150
	defaultRating  = "g"
	defaultImage   = "retro"
	gravatarPrefix = "https://www.gravatar.com/avatar/"
)

// URL returns the avatar image URL for email.
func URL(email string, size int) string {
	if size <= 0 {
		size = DefaultSize
	}

	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))

	q := url.Values{}
	q.Set("s", fmt.Sprint(size))
	q.Set("d", defaultImage)
	q.Set("r", defaultRating)

	return gravatarPrefix + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
