package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer creates and checks session tokens.
type TokenIssuer interface {
	Generate(userID string) (string, error)
	Verify(token string) bool
	// Subject returns the user id carried by a token that passes Verify.
	Subject(token string) (string, error)
}

// LegacyTokens issues Base64-encoded {"userId","timestamp"} payloads.
//
// NOT CRYPTOGRAPHIC: tokens are unsigned and never expire, anyone can forge
// one for any user id. Verification only checks that the payload decodes to
// an object with a userId field.
type LegacyTokens struct {
	Now func() time.Time
}

type legacyPayload struct {
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

func (l LegacyTokens) Generate(userID string) (string, error) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	payload, err := json.Marshal(legacyPayload{UserID: userID, Timestamp: now().UnixMilli()})
	if err != nil {
		return "", err
	}
	return encodeLatin1Base64(string(payload))
}

func (LegacyTokens) Verify(token string) bool {
	fields, err := decodeLegacy(token)
	if err != nil {
		return false
	}
	_, ok := fields["userId"]
	return ok
}

func (LegacyTokens) Subject(token string) (string, error) {
	fields, err := decodeLegacy(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	var userID string
	if err := json.Unmarshal(fields["userId"], &userID); err != nil || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func decodeLegacy(token string) (map[string]json.RawMessage, error) {
	decoded, err := decodeLatin1Base64(token)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(decoded), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// JWTTokens issues HS256 tokens with sub and exp claims.
type JWTTokens struct {
	Secret []byte
	Expiry time.Duration
}

func (j JWTTokens) Generate(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(j.Expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (j JWTTokens) Verify(token string) bool {
	_, err := j.Subject(token)
	return err == nil
}

func (j JWTTokens) Subject(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return j.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
