// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the token lifetime used when none is configured.
const DefaultTokenTTL = time.Hour

// Claims is the identity payload embedded in a bearer token. The subject
// registered claim carries the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// TokenIssuer creates and verifies signed, time-limited bearer tokens.
type TokenIssuer interface {
	// Issue produces a compact signed token for the user.
	Issue(userID ulid.ULID, username string) (string, error)

	// Verify checks signature and expiry and returns the embedded claims.
	// Failures carry distinct codes: AUTH_TOKEN_EXPIRED for expired tokens,
	// AUTH_TOKEN_SIGNATURE for signature mismatches, AUTH_TOKEN_MALFORMED
	// for anything that is not a well-formed token.
	Verify(token string) (*Claims, error)
}

// JWTIssuer implements TokenIssuer using HS256 JWTs.
// The signing key is process-wide configuration loaded once at startup;
// rotating it invalidates every previously issued token.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates a JWTIssuer. The secret must be non-empty.
// A non-positive ttl falls back to DefaultTokenTTL.
func NewJWTIssuer(secret []byte, ttl time.Duration) (*JWTIssuer, error) {
	if len(secret) == 0 {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("token signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTIssuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Issue produces a compact signed token for the user.
func (i *JWTIssuer) Issue(userID ulid.ULID, username string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Username: username,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks signature validity and expiry and returns the claims.
func (i *JWTIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, oops.Code("AUTH_TOKEN_EXPIRED").Wrap(err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, oops.Code("AUTH_TOKEN_SIGNATURE").Wrap(err)
		default:
			return nil, oops.Code("AUTH_TOKEN_MALFORMED").Wrap(err)
		}
	}

	if !token.Valid {
		return nil, oops.Code("AUTH_TOKEN_MALFORMED").Errorf("token is not valid")
	}

	return claims, nil
}

// SubjectID parses the claim subject back into a user ID.
func (c *Claims) SubjectID() (ulid.ULID, error) {
	id, err := ulid.Parse(c.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code("AUTH_TOKEN_MALFORMED").
			With("subject", c.Subject).
			Wrap(err)
	}
	return id, nil
}

// Compile-time interface check.
var _ TokenIssuer = (*JWTIssuer)(nil)
