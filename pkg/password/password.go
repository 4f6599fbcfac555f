// Package password derives and verifies one-way password credentials.
//
// Credentials use the Werkzeug layout
//
//	pbkdf2:sha256:<iterations>$<salt>$<hex digest>
//
// so hashes written by earlier deployments keep verifying. bcrypt credentials
// ($2a$, $2b$, $2y$) are accepted by Verify as well.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 600_000
	SaltLength        = 8

	method    = "pbkdf2"
	hashName  = "sha256"
	keyLength = sha256.Size
	saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrEmptyPassword = errors.New("password must not be empty")

type Hasher struct {
	iterations int
}

// NewHasher returns a Hasher using the given PBKDF2 iteration count.
// Non-positive values fall back to DefaultIterations.
func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Hasher{iterations: iterations}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	salt, err := randomSalt(SaltLength)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := derive(plaintext, salt, h.iterations)
	return fmt.Sprintf("%s:%s:%d$%s$%s", method, hashName, h.iterations, salt, hex.EncodeToString(digest)), nil
}

// Verify reports whether plaintext matches credential. Malformed credentials
// never match.
func (h *Hasher) Verify(plaintext, credential string) bool {
	if strings.HasPrefix(credential, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(credential), []byte(plaintext)) == nil
	}

	iterations, salt, want, ok := parse(credential)
	if !ok {
		return false
	}

	got := derive(plaintext, salt, iterations)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func derive(plaintext, salt string, iterations int) []byte {
	return pbkdf2.Key([]byte(plaintext), []byte(salt), iterations, keyLength, sha256.New)
}

func parse(credential string) (iterations int, salt string, digest []byte, ok bool) {
	parts := strings.Split(credential, "$")
	if len(parts) != 3 {
		return 0, "", nil, false
	}

	params := strings.Split(parts[0], ":")
	if len(params) != 3 || params[0] != method || params[1] != hashName {
		return 0, "", nil, false
	}

	iterations, err := strconv.Atoi(params[2])
	if err != nil || iterations <= 0 {
		return 0, "", nil, false
	}

	digest, err = hex.DecodeString(parts[2])
	if err != nil || len(digest) != keyLength || parts[1] == "" {
		return 0, "", nil, false
	}

	return iterations, parts[1], digest, true
}

func randomSalt(n int) (string, error) {
	limit := big.NewInt(int64(len(saltChars)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = saltChars[idx.Int64()]
	}
	return string(b), nil
}
