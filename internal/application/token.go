package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and verifies HS256 session tokens whose subject is the
// user id.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
}

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// NewTokenIssuer constructs a TokenIssuer. newID supplies the token id claim.
func NewTokenIssuer(secret []byte, ttl time.Duration, now func() time.Time, newID func() string) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = func() string { return "" }
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: now, newID: newID}
}

// Issue signs a token for userID that expires after the configured TTL.
func (i *TokenIssuer) Issue(userID string) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, errors.New("session secret not configured")
	}
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        i.newID(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Parse verifies the signature and expiry of token. Expired tokens yield
// ErrSessionExpired; any other defect yields ErrUnauthorized.
func (i *TokenIssuer) Parse(token string) (TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return TokenClaims{}, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return TokenClaims{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
