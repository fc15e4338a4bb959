// Package auth implements issuing and verifying the bearer tokens that
// identify a user across requests. Tokens are HS512-signed JWTs carrying
// the username as subject plus issued-at and expiry claims; validity is a
// pure function of the token content, the signing key and the clock, so
// nothing is ever persisted server-side.
package auth

import (
	"crypto/sha512"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrKeyTooShort is returned by NewTokenService when the signing key
	// does not cover the full HS512 hash width.
	ErrKeyTooShort = errors.New("auth: signing key shorter than 64 bytes")
	// ErrInvalidToken covers malformed tokens, signature mismatches and
	// decode failures. Callers must treat it as unauthenticated.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired is returned for a well-signed token past its expiry.
	// From a caller's perspective it equals ErrInvalidToken; it exists so
	// diagnostics can tell the two apart.
	ErrTokenExpired = errors.New("auth: token expired")
)

// DefaultTTL is the validity window applied when no explicit TTL is given.
const DefaultTTL = 7 * 24 * time.Hour

// MinKeyBytes is the minimum signing key length. HS512 produces a
// 64-byte MAC; a shorter key would weaken it below the hash width.
const MinKeyBytes = sha512.Size

// TokenService issues and verifies access tokens. The signing key is
// owned by the service value, constructed once at startup and passed to
// whoever needs to mint or check tokens; there is no package-global key.
// The zero value is unusable, use NewTokenService.
type TokenService struct {
	key []byte
	ttl time.Duration
}

// NewTokenService builds a token service around the given signing key and
// validity window. Keys shorter than MinKeyBytes are rejected. A zero ttl
// selects DefaultTTL; negative values are kept as-is, which only makes
// sense in tests that need pre-expired tokens.
func NewTokenService(key []byte, ttl time.Duration) (*TokenService, error) {
	if len(key) < MinKeyBytes {
		return nil, ErrKeyTooShort
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &TokenService{key: k, ttl: ttl}, nil
}

// Issue signs a new token for the given subject. The token carries the
// subject, the issuance time and an expiry at issuance plus the service
// TTL. Any structural change to the encoded claims breaks the signature.
func (s *TokenService) Issue(subject string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.key)
}

// ExtractSubject verifies the token and returns its subject. It fails
// closed: any parse or signature problem yields ErrInvalidToken, and a
// valid signature past its expiry yields ErrTokenExpired. Tokens signed
// with a non-HMAC method are rejected regardless of their claims.
func (s *TokenService) ExtractSubject(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return s.key, nil
		},
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !tok.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Validate reports whether the token is currently valid for the expected
// subject: the signature must verify, the subject must match exactly and
// the expiry must still be in the future.
func (s *TokenService) Validate(token, expectedSubject string) bool {
	sub, err := s.ExtractSubject(token)
	return err == nil && sub == expectedSubject
}
