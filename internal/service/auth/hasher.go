package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/chatapi/internal/apperrors"
)

// Schemes new hashes may be created with
const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"
)

const argon2idPrefix = "$argon2id$"

type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher creates hashes with one scheme but verifies every encoding ever stored:
//   - bcrypt over sha256 of password (current bcrypt scheme)
//   - bcrypt over raw password ('$2y$' hashes of php password_hash and alike)
//   - argon2id PHC strings with any parameters
type Hasher struct {
	scheme     string
	bcryptCost int
	argon2     Argon2Params
}

var DefaultHasher = &Hasher{
	scheme:     SchemeBcrypt,
	bcryptCost: bcrypt.DefaultCost,
	argon2:     DefaultArgon2Params,
}

func NewHasher(scheme string) (*Hasher, error) {
	switch scheme {
	case "", SchemeBcrypt:
		scheme = SchemeBcrypt
	case SchemeArgon2id:
	default:
		return nil, fmt.Errorf("unsupported password hash scheme %q", scheme)
	}

	return &Hasher{
		scheme:     scheme,
		bcryptCost: bcrypt.DefaultCost,
		argon2:     DefaultArgon2Params,
	}, nil
}

// Same hasher but argon2id hashes are created with the params
func (h *Hasher) WithArgon2Params(p Argon2Params) *Hasher {
	clone := *h
	clone.argon2 = p
	return &clone
}

func (h *Hasher) Scheme() string {
	return h.scheme
}

func (h *Hasher) Hash(password string) (string, error) {
	switch h.scheme {
	case SchemeArgon2id:
		return hashArgon2id(password, h.argon2)
	default:
		sum := sha256.Sum256([]byte(password))
		hash, err := bcrypt.GenerateFromPassword(sum[:], h.bcryptCost)
		return string(hash), err
	}
}

// Compare returns nil if password matches hashedPassword
// apperrors.ErrPasswordMismatch if it does not, apperrors.ErrUnknownHashFormat if hash could not be recognized
func (h *Hasher) Compare(hashedPassword string, password string) error {
	switch {
	case strings.HasPrefix(hashedPassword, argon2idPrefix):
		return compareArgon2id(hashedPassword, password)
	case strings.HasPrefix(hashedPassword, "$2"):
		return compareBcrypt(hashedPassword, password)
	default:
		return apperrors.ErrUnknownHashFormat
	}
}

func compareBcrypt(hashedPassword string, password string) error {
	sum := sha256.Sum256([]byte(password))
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), sum[:])
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return fmt.Errorf("%w: %w", apperrors.ErrUnknownHashFormat, err)
	}

	// Hash may be created without sha256 prehash
	if bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil {
		return nil
	}

	return apperrors.ErrPasswordMismatch
}

// PHC string: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
func hashArgon2id(password string, p Argon2Params) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("error while generating salt. Err: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf(
		"%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix,
		argon2.Version,
		p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func compareArgon2id(hashedPassword string, password string) error {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 6 {
		return apperrors.ErrUnknownHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return apperrors.ErrUnknownHashFormat
	}

	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return apperrors.ErrUnknownHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return apperrors.ErrUnknownHashFormat
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return apperrors.ErrUnknownHashFormat
	}

	other := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(key)))
	if subtle.ConstantTimeCompare(key, other) != 1 {
		return apperrors.ErrPasswordMismatch
	}

	return nil
}
