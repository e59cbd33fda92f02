// Package password hashes and verifies account passwords with PBKDF2.
//
// Hashes are stored as "pbkdf2:sha256:<iterations>$<salt>$<hex digest>",
// the layout Werkzeug writes, so hashes already in the usuarios table keep
// verifying.
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

	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 600000
	DefaultSaltLength = 16

	method    = "pbkdf2"
	hashName  = "sha256"
	keyLength = sha256.Size
	saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrMalformedHash = errors.New("malformed password hash")

type Hasher struct {
	Iterations int
	SaltLength int
}

func NewHasher(iterations int) Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return Hasher{Iterations: iterations, SaltLength: DefaultSaltLength}
}

func (h Hasher) Hash(plain string) (string, error) {
	salt, err := randomSalt(h.SaltLength)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	digest := pbkdf2.Key([]byte(plain), []byte(salt), h.Iterations, keyLength, sha256.New)
	return fmt.Sprintf("%s:%s:%d$%s$%s", method, hashName, h.Iterations, salt, hex.EncodeToString(digest)), nil
}

// Verify reports whether plain matches encoded. A malformed hash never matches.
func Verify(encoded, plain string) (bool, error) {
	header, salt, digestHex, err := split(encoded)
	if err != nil {
		return false, err
	}

	iterations, err := parseHeader(header)
	if err != nil {
		return false, err
	}

	want, err := hex.DecodeString(digestHex)
	if err != nil || len(want) == 0 {
		return false, ErrMalformedHash
	}

	got := pbkdf2.Key([]byte(plain), []byte(salt), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func split(encoded string) (header, salt, digest string, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[1] == "" {
		return "", "", "", ErrMalformedHash
	}
	return parts[0], parts[1], parts[2], nil
}

// parseHeader accepts "pbkdf2:sha256" and "pbkdf2:sha256:<iterations>".
func parseHeader(header string) (int, error) {
	fields := strings.Split(header, ":")
	if len(fields) < 2 || len(fields) > 3 || fields[0] != method || fields[1] != hashName {
		return 0, fmt.Errorf("%w: unsupported method %q", ErrMalformedHash, header)
	}
	if len(fields) == 2 {
		return DefaultIterations, nil
	}
	iterations, err := strconv.Atoi(fields[2])
	if err != nil || iterations <= 0 {
		return 0, fmt.Errorf("%w: bad iteration count %q", ErrMalformedHash, fields[2])
	}
	return iterations, nil
}

func randomSalt(n int) (string, error) {
	max := big.NewInt(int64(len(saltChars)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = saltChars[idx.Int64()]
	}
	return string(b), nil
}
