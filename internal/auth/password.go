// Package auth hashes and verifies account passwords.
//
// Current hashes are PBKDF2-HMAC-SHA256 encoded as
// pbkdf2_sha256$<iterations>$<salt>$<key> with unpadded base64 salt and key.
// Older databases may still hold unsalted SHA-256 hex digests or plaintext;
// those verify with needsRehash set so callers can upgrade them.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Algorithm is the prefix of every current-scheme hash.
	Algorithm = "pbkdf2_sha256"
	// DefaultIterations is the PBKDF2 work factor for new hashes.
	DefaultIterations = 200000
	SaltLength        = 16
	KeyLength         = 32
)

var encoding = base64.RawStdEncoding

// Hasher hashes passwords with a fixed iteration count.
type Hasher struct {
	Iterations int
}

// NewHasher returns a Hasher; iterations below 1 use DefaultIterations.
func NewHasher(iterations int) *Hasher {
	if iterations < 1 {
		iterations = DefaultIterations
	}
	return &Hasher{Iterations: iterations}
}

// HashPassword hashes password with a fresh random salt.
func (h *Hasher) HashPassword(password string) (string, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, h.Iterations, KeyLength, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s", Algorithm, h.Iterations, encoding.EncodeToString(salt), encoding.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches encoded. needsRehash is
// true when the stored hash uses a legacy scheme or a different iteration
// count than h. A malformed current-scheme hash is an error.
func (h *Hasher) VerifyPassword(password, encoded string) (ok bool, needsRehash bool, err error) {
	if strings.HasPrefix(encoded, Algorithm+"$") {
		iterations, salt, key, err := decode(encoded)
		if err != nil {
			return false, false, err
		}
		derived := pbkdf2.Key([]byte(password), salt, iterations, len(key), sha256.New)
		if subtle.ConstantTimeCompare(derived, key) != 1 {
			return false, false, nil
		}
		return true, iterations != h.Iterations, nil
	}

	if isSHA256Hex(encoded) {
		sum := sha256.Sum256([]byte(password))
		match := subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(strings.ToLower(encoded))) == 1
		return match, match, nil
	}

	if encoded == "" {
		return false, false, nil
	}
	match := subtle.ConstantTimeCompare([]byte(password), []byte(encoded)) == 1
	return match, match, nil
}

// HashPassword hashes with DefaultIterations.
func HashPassword(password string) (string, error) {
	return NewHasher(DefaultIterations).HashPassword(password)
}

// VerifyPassword verifies against any supported scheme using
// DefaultIterations as the current work factor.
func VerifyPassword(password, encoded string) (bool, bool, error) {
	return NewHasher(DefaultIterations).VerifyPassword(password, encoded)
}

func decode(encoded string) (int, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 {
		return 0, nil, nil, fmt.Errorf("malformed password hash: expected 4 fields, got %d", len(parts))
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations < 1 {
		return 0, nil, nil, fmt.Errorf("malformed password hash: bad iteration count %q", parts[1])
	}
	salt, err := encoding.DecodeString(parts[2])
	if err != nil {
		return 0, nil, nil, fmt.Errorf("malformed password hash: bad salt: %w", err)
	}
	key, err := encoding.DecodeString(parts[3])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, fmt.Errorf("malformed password hash: bad key")
	}
	return iterations, salt, key, nil
}

func isSHA256Hex(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
