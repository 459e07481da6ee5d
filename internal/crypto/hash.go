package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHashFormat   = errors.New("invalid encoded hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// HashParams configures the Argon2id hashing parameters.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams returns recommended Argon2id parameters for password hashing.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// PasswordHasher hashes and verifies user passwords with Argon2id.
type PasswordHasher struct {
	params HashParams
}

// NewPasswordHasher creates a PasswordHasher using the given parameters.
func NewPasswordHasher(params HashParams) *PasswordHasher {
	return &PasswordHasher{params: params}
}

// Hash returns the salted hash of password encoded in PHC string format.
func (h *PasswordHasher) Hash(password string) (string, error) {
	p := h.params

	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	// $argon2id$v=19$m=65536,t=3,p=2$<base64-salt>$<base64-key>
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Iterations,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks password against an encoded hash. The parameters stored in
// the hash are used, so hashes made with older settings keep verifying.
func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	p, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// decodeHash parses a PHC-formatted Argon2id hash string.
func decodeHash(encoded string) (HashParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	if version != argon2.Version {
		return HashParams{}, nil, nil, ErrIncompatibleVersion
	}

	var p HashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}
