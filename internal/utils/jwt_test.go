package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCodec(t *testing.T, clock *fakeClock) *TokenCodec {
    t.Helper()
    c, err := NewTokenCodec("test-secret", WithClock(clock.Now))
    require.NoError(t, err)
    return c
}

func TestNewTokenCodec_RejectsEmptySecret(t *testing.T) {
    _, err := NewTokenCodec("")
    assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
    clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
    c := newTestCodec(t, clock)

    tok, err := c.Issue(42)
    require.NoError(t, err)
    assert.Equal(t, clock.t.Add(time.Hour), tok.Exp)

    id, err := c.Verify(tok.Token)
    require.NoError(t, err)
    assert.Equal(t, uint64(42), id)
}

func TestTokenCodec_Expiry(t *testing.T) {
    issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
    clock := &fakeClock{t: issued}
    c := newTestCodec(t, clock)

    tok, err := c.Issue(7)
    require.NoError(t, err)

    clock.t = issued.Add(59*time.Minute + 59*time.Second)
    id, err := c.Verify(tok.Token)
    require.NoError(t, err)
    assert.Equal(t, uint64(7), id)

    clock.t = issued.Add(time.Hour + time.Second)
    _, err = c.Verify(tok.Token)
    assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_RejectsForeignSignature(t *testing.T) {
    clock := &fakeClock{t: time.Now()}
    issuer, err := NewTokenCodec("other-secret", WithClock(clock.Now))
    require.NoError(t, err)
    tok, err := issuer.Issue(1)
    require.NoError(t, err)

    _, err = newTestCodec(t, clock).Verify(tok.Token)
    assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_RejectsMalformed(t *testing.T) {
    c := newTestCodec(t, &fakeClock{t: time.Now()})
    for _, raw := range []string{"", "abc", "a.b.c"} {
        _, err := c.Verify(raw)
        assert.ErrorIs(t, err, ErrInvalidToken, "token %q", raw)
    }
}

func TestTokenCodec_RejectsUnsignedAndMissingClaims(t *testing.T) {
    now := time.Now()
    c := newTestCodec(t, &fakeClock{t: now})

    unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
        Subject:   "1",
        ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
    }).SignedString(jwt.UnsafeAllowNoneSignatureType)
    require.NoError(t, err)
    _, err = c.Verify(unsigned)
    assert.ErrorIs(t, err, ErrInvalidToken)

    noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).
        SignedString([]byte("test-secret"))
    require.NoError(t, err)
    _, err = c.Verify(noExp)
    assert.ErrorIs(t, err, ErrInvalidToken)

    badSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
        Subject:   "not-a-number",
        ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
    }).SignedString([]byte("test-secret"))
    require.NoError(t, err)
    _, err = c.Verify(badSub)
    assert.ErrorIs(t, err, ErrInvalidToken)
}
