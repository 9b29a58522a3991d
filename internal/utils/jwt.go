package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"  // errors defines the InvalidToken sentinel
    "strconv" // strconv encodes the user ID into the subject claim
    "time"    // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// AccessTokenTTL is the lifetime of every issued access token.
const AccessTokenTTL = time.Hour

// ErrInvalidToken is returned by Verify for malformed, unsigned, wrongly
// signed or expired tokens.  Callers never learn which check failed.
var ErrInvalidToken = errors.New("invalid token")

// ErrEmptySecret is returned by NewTokenCodec when no signing key is given.
var ErrEmptySecret = errors.New("token signing secret is empty")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp.  Clients send the token in the Authorization header when
// calling protected endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// TokenCodec issues and verifies HS256 access tokens carrying a user ID.
// The key is supplied once from configuration; there is no other source.
type TokenCodec struct {
    secret []byte
    now    func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces the wall clock, mainly so expiry can be tested.
func WithClock(now func() time.Time) CodecOption {
    return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec builds a codec signing with secret.
func NewTokenCodec(secret string, opts ...CodecOption) (*TokenCodec, error) {
    if secret == "" {
        return nil, ErrEmptySecret
    }
    c := &TokenCodec{secret: []byte(secret), now: time.Now}
    for _, opt := range opts {
        opt(c)
    }
    return c, nil
}

// Issue builds and signs an HS256 JWT for userID.  The subject (sub) holds
// the decimal user ID; exp is exactly AccessTokenTTL after iat.
func (c *TokenCodec) Issue(userID uint64) (AccessToken, error) {
    // NumericDate has second precision, so truncate before computing exp.
    iat := c.now().UTC().Truncate(time.Second)
    exp := iat.Add(AccessTokenTTL)
    claims := jwt.RegisteredClaims{
        Subject:   strconv.FormatUint(userID, 10),
        IssuedAt:  jwt.NewNumericDate(iat),
        ExpiresAt: jwt.NewNumericDate(exp),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString(c.secret)
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify decodes token, checks algorithm, signature and expiry, and returns
// the embedded user ID.  Every failure is reported as ErrInvalidToken.
func (c *TokenCodec) Verify(token string) (uint64, error) {
    if token == "" {
        return 0, ErrInvalidToken
    }
    var claims jwt.RegisteredClaims
    tok, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
        return c.secret, nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithTimeFunc(c.now),
    )
    if err != nil || !tok.Valid {
        return 0, ErrInvalidToken
    }
    id, err := strconv.ParseUint(claims.Subject, 10, 64)
    if err != nil || id == 0 {
        return 0, ErrInvalidToken
    }
    return id, nil
}
