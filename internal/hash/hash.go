// Package hash derives and verifies argon2id password records in the
// standard PHC string format, so stored hashes stay portable:
//
//	$argon2id$v=19$m=65536,t=3,p=1$<salt>$<key>
package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

type Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams follows the OWASP argon2id recommendation.
func DefaultParams() Params {
	return Params{
		Time:    3,
		Memory:  64 * 1024,
		Threads: 1,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// Argon2Hasher is safe for concurrent use; it holds only cost parameters.
type Argon2Hasher struct {
	Params Params
}

// Hash derives a record for the given password with a fresh random salt.
// Two calls with the same password produce different records.
func (h Argon2Hasher) Hash(password string) (string, error) {
	p := h.params()

	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	record := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return record, nil
}

// Verify re-derives the key under the parameters embedded in record and
// compares in constant time. A well-formed record that does not match
// yields (false, nil); a structurally corrupt record yields an error.
func (h Argon2Hasher) Verify(password, record string) (bool, error) {
	salt, key, p, err := decodeRecord(record)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func (h Argon2Hasher) params() Params {
	if h.Params == (Params{}) {
		return DefaultParams()
	}
	return h.Params
}

func decodeRecord(record string) (salt, key []byte, p Params, err error) {
	parts := strings.Split(record, "$")
	if len(parts) != 6 {
		return nil, nil, p, fmt.Errorf("malformed password record")
	}
	if parts[1] != "argon2id" {
		return nil, nil, p, fmt.Errorf("unsupported algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, p, fmt.Errorf("parse version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, p, fmt.Errorf("unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return nil, nil, p, fmt.Errorf("parse cost parameters: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, p, fmt.Errorf("decode salt: %w", err)
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, p, fmt.Errorf("decode key: %w", err)
	}

	return salt, key, p, nil
}
