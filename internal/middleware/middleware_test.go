package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-hub/internal/apperr"
	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/utils"
)

func newCodec(t *testing.T) *utils.TokenCodec {
	t.Helper()
	codec, err := utils.NewTokenCodec("middleware-test-secret")
	require.NoError(t, err)
	return codec
}

// runAuth executes JWTAuth around a handler that records the user id.
func runAuth(t *testing.T, codec *utils.TokenCodec, header string) (uint64, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen uint64
	h := JWTAuth(codec)(func(c echo.Context) error {
		id, ok := UserIDFrom(c)
		require.True(t, ok)
		seen = id
		return nil
	})
	return seen, h(c)
}

func apiCode(t *testing.T, err error) string {
	t.Helper()
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae), "expected *apperr.Error, got %v", err)
	require.NotEmpty(t, ae.Details)
	return ae.Details[0].Code
}

func TestJWTAuth(t *testing.T) {
	codec := newCodec(t)
	tok, err := codec.Issue(42)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		id, err := runAuth(t, codec, "Bearer "+tok.Token)
		require.NoError(t, err)
		assert.EqualValues(t, 42, id)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		id, err := runAuth(t, codec, "bearer "+tok.Token)
		require.NoError(t, err)
		assert.EqualValues(t, 42, id)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := runAuth(t, codec, "")
		assert.Equal(t, apperr.CodeNotSignedIn, apiCode(t, err))
	})

	for name, header := range map[string]string{
		"wrong scheme":   "Basic abc",
		"empty token":    "Bearer ",
		"garbage token":  "Bearer not.a.jwt",
		"foreign secret": "Bearer " + foreignToken(t),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := runAuth(t, codec, header)
			assert.Equal(t, apperr.CodeInvalidToken, apiCode(t, err))
		})
	}
}

func foreignToken(t *testing.T) string {
	t.Helper()
	other, err := utils.NewTokenCodec("some-other-secret")
	require.NoError(t, err)
	tok, err := other.Issue(42)
	require.NoError(t, err)
	return tok.Token
}

func TestUserIDFrom_Unauthenticated(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := UserIDFrom(c)
	assert.False(t, ok)
}

func TestCacheKeyFrom(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	e := echo.New()

	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/community")
		return cacheKeyFrom(cfg, GroupCommunities, c)
	}
	k1, k2 := key("/community?page=1"), key("/community?page=2")
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, key("/community?page=1"))
	assert.Regexp(t, `^cache:communities:[0-9a-f]{40}$`, k1)

	// path params are part of the key
	member := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/community/:id/members")
		c.SetParamNames("id")
		return cacheKeyFrom(cfg, GroupMembers, c)
	}
	assert.NotEqual(t, member("/community/1/members"), member("/community/2/members"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"status":true}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"status":true}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestNewRedisCache_WithoutClientIsPassthrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: true, Methods: []string{"GET"}}, nil, GroupRoles)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/role", nil), rec)

	err := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })(c)
	require.NoError(t, err)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))

	p := NewPurger(config.CacheConfig{Enabled: true}, nil)
	assert.IsType(t, NopPurger{}, p)
	p.Purge(context.Background(), GroupRoles)
}

func TestCaptureWriter_Limit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.truncated)
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.truncated)
	assert.Equal(t, "abcdef", rec.Body.String())
}
