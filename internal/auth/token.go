package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind discriminates what an issued token may be used for. The kind is
// embedded in the token itself and checked on every verification; it is
// never inferred from context.
type TokenKind string

const (
	KindAccess            TokenKind = "access"
	KindRefresh           TokenKind = "refresh"
	KindEmailVerification TokenKind = "email_verification"
	KindPasswordReset     TokenKind = "password_reset"
)

// ErrInvalidToken covers every verification failure: bad signature, expired,
// or wrong kind. Callers get no more detail than that.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload carried by every issued token.
type Claims struct {
	Email   string    `json:"email,omitempty"`
	IsAdmin bool      `json:"is_admin,omitempty"`
	Kind    TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user id.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// TokenIssuer mints and verifies signed, expiring tokens. Access and refresh
// tokens share one signing secret; email-verification and password-reset
// tokens share another.
type TokenIssuer struct {
	sessionSecret []byte
	actionSecret  []byte
	ttl           map[TokenKind]time.Duration
}

func NewTokenIssuer(sessionSecret, actionSecret string, accessTTL, refreshTTL, verificationTTL, resetTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		sessionSecret: []byte(sessionSecret),
		actionSecret:  []byte(actionSecret),
		ttl: map[TokenKind]time.Duration{
			KindAccess:            accessTTL,
			KindRefresh:           refreshTTL,
			KindEmailVerification: verificationTTL,
			KindPasswordReset:     resetTTL,
		},
	}
}

// TTL reports the configured lifetime for the given kind.
func (i *TokenIssuer) TTL(kind TokenKind) time.Duration {
	return i.ttl[kind]
}

func (i *TokenIssuer) secretFor(kind TokenKind) []byte {
	if kind == KindAccess || kind == KindRefresh {
		return i.sessionSecret
	}
	return i.actionSecret
}

// Issue signs a token of the given kind for the given identity, expiring
// after the kind's configured TTL.
func (i *TokenIssuer) Issue(userID uuid.UUID, email string, isAdmin bool, kind TokenKind) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:   email,
		IsAdmin: isAdmin,
		Kind:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl[kind])),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secretFor(kind))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify parses the token against the expected kind's secret and returns its
// claims. It fails with ErrInvalidToken if the signature is invalid, the
// token has expired, or the embedded kind does not match.
func (i *TokenIssuer) Verify(token string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secretFor(kind), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
