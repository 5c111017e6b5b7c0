package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"dm-lab/errors"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

type Algorithm string

const (
	Bcrypt   Algorithm = "bcrypt"
	Argon2id Algorithm = "argon2id"
)

const DefaultBcryptCost = 10

// Argon2 parameters based on OWASP recommendations
const (
	Memory      = 64 * 1024 // 64 MB
	Iterations  = 3
	Parallelism = 2
	SaltLength  = 16
	KeyLength   = 32
)

const argon2Prefix = "$argon2id$"

const bcryptMaxBytes = 72

// PasswordHasher hashes new passwords with the configured algorithm and
// verifies stored hashes of any supported algorithm.
type PasswordHasher struct {
	algorithm  Algorithm
	bcryptCost int
}

func NewPasswordHasher(algorithm Algorithm, bcryptCost int) (*PasswordHasher, error) {
	switch algorithm {
	case Bcrypt:
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case Argon2id:
	default:
		return nil, fmt.Errorf("unknown password hashing algorithm %q", algorithm)
	}
	return &PasswordHasher{algorithm: algorithm, bcryptCost: bcryptCost}, nil
}

func (h PasswordHasher) Hash(password string) (string, error) {
	if h.algorithm == Argon2id {
		return hashArgon2(password)
	}
	// bcrypt input is capped at 72 bytes, multibyte passwords reach it before the rune limit
	if len(password) > bcryptMaxBytes {
		return "", fmt.Errorf("%w: Password must be at most %d bytes", errors.ErrValidation, bcryptMaxBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare reports whether password matches encodedHash. A mismatch is not an
// error; a malformed hash is.
func (h PasswordHasher) Compare(password, encodedHash string) (bool, error) {
	if strings.HasPrefix(encodedHash, argon2Prefix) {
		return compareArgon2(password, encodedHash)
	}
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

func hashArgon2(password string) (string, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, Iterations, Memory, Parallelism, KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s", argon2.Version, Memory, Iterations, Parallelism, b64Salt, b64Hash), nil
}

func compareArgon2(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, stderrors.New("invalid hash format")
	}

	var version int
	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("invalid hash version: %w", err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("unsupported argon2 version %d", version)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, fmt.Errorf("invalid hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, err
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, err
	}

	comparisonHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(decodedHash)))

	// Constant time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare(decodedHash, comparisonHash) == 1, nil
}
