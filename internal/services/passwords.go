package services

import (
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCharacter is returned by the legacy encodings for input outside
// Latin-1.
var ErrInvalidCharacter = errors.New("invalid character: string contains characters outside of the Latin1 range")

// PasswordHasher turns a clear-text password into its stored form and checks
// candidates against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// LegacyHasher stores Base64 of the password. It is a reversible encoding,
// not a hash, and offers no protection if the data store leaks. It exists
// only for compatibility with existing data stores.
type LegacyHasher struct{}

func (LegacyHasher) Hash(password string) (string, error) {
	return encodeLatin1Base64(password)
}

func (LegacyHasher) Verify(password, encoded string) (bool, error) {
	candidate, err := encodeLatin1Base64(password)
	if err != nil {
		return false, err
	}
	return candidate == encoded, nil
}

// BcryptHasher is the hasher used in secure mode.
type BcryptHasher struct {
	Cost int
}

func (b BcryptHasher) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (BcryptHasher) Verify(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
	return true, nil
}

// encodeLatin1Base64 encodes each character as one byte, the way browsers
// implement btoa. Characters above U+00FF cannot be encoded.
func encodeLatin1Base64(s string) (string, error) {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return "", ErrInvalidCharacter
		}
		buf = append(buf, byte(r))
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// decodeLatin1Base64 is the inverse of encodeLatin1Base64.
func decodeLatin1Base64(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(s)
		if err != nil {
			return "", err
		}
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes), nil
}
