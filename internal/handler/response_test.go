package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-hub/internal/apperr"
	"github.com/iliyamo/community-hub/internal/testutil"
)

func render(t *testing.T, method string, err error) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, "/x", nil), rec)
	ErrorHandler(testutil.TestLogger())(err, c)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app error", apperr.NotAllowed(), http.StatusForbidden, apperr.CodeNotAllowedAccess},
		{"wrapped app error", errors.Join(errors.New("ctx"), apperr.InvalidToken()), http.StatusUnauthorized, apperr.CodeInvalidToken},
		{"echo not found", echo.ErrNotFound, http.StatusNotFound, apperr.CodeResourceNotFound},
		{"echo method not allowed", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, apperr.CodeResourceNotFound},
		{"echo bad request", echo.NewHTTPError(http.StatusBadRequest, "bad"), http.StatusBadRequest, apperr.CodeInvalidInput},
		{"echo 500", echo.ErrInternalServerError, http.StatusInternalServerError, apperr.CodeInternalServerError},
		{"unknown error", errors.New("sql: connection refused"), http.StatusInternalServerError, apperr.CodeInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := render(t, http.MethodGet, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, env.Status)
			require.Len(t, env.Errors, 1)
			assert.Equal(t, tt.wantCode, env.Errors[0].Code)
		})
	}
}

func TestErrorHandler_HidesInternalDetail(t *testing.T) {
	rec, _ := render(t, http.MethodGet, errors.New("dial tcp 10.0.0.1:3306: secret detail"))
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestErrorHandler_Head(t *testing.T) {
	rec, _ := render(t, http.MethodHead, apperr.NotSignedIn())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(&createRoleReq{Name: "Member"}))

	err := v.Validate(&signupReq{Email: "nope", Password: "123"})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	require.Len(t, ae.Details, 2)
	assert.Equal(t, apperr.Detail{Code: apperr.CodeInvalidInput, Field: "email", Message: "Please provide a valid email."}, ae.Details[0])
	assert.Equal(t, apperr.Detail{Code: apperr.CodeInvalidInput, Field: "password", Message: "Password should be at least 6 characters."}, ae.Details[1])

	err = v.Validate(&addMemberReq{})
	require.ErrorAs(t, err, &ae)
	assert.Len(t, ae.Details, 3)
	assert.Equal(t, "Community is required.", ae.Details[0].Message)
}

func TestValidator_TrimmedMinAndByteLimit(t *testing.T) {
	v := NewValidator()
	var ae *apperr.Error

	for _, name := range []string{"", "   ", " x "} {
		err := v.Validate(&createCommunityReq{Name: name})
		require.ErrorAs(t, err, &ae, "name %q", name)
		assert.Equal(t, "name", ae.Details[0].Field)
	}
	require.NoError(t, v.Validate(&createCommunityReq{Name: " ab "}))

	err := v.Validate(&createRoleReq{Name: "  "})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Name should be at least 2 characters.", ae.Details[0].Message)

	err = v.Validate(&signupReq{Email: "a@example.com", Password: strings.Repeat("é", 37)})
	require.ErrorAs(t, err, &ae)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, apperr.Detail{Code: apperr.CodeInvalidInput, Field: "password", Message: "Password should be at most 72 bytes."}, ae.Details[0])
	require.NoError(t, v.Validate(&signupReq{Email: "a@example.com", Password: strings.Repeat("é", 36)}))
}

func TestPageParam(t *testing.T) {
	e := echo.New()
	for query, want := range map[string]int{"": 1, "page=2": 2, "page=0": 1, "page=-1": 1, "page=x": 1} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/role?"+query, nil), httptest.NewRecorder())
		assert.Equal(t, want, pageParam(c), query)
	}
}
