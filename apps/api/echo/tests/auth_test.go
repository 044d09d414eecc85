package tests

import (
	"net/http"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/impact7/scoredesk/apps/api/echo"
	"github.com/impact7/scoredesk/core"
)

func Test_home(t *testing.T) {
	a := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	a.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Scoredesk API!", rec.Body.String())
}

func Test_authApi_login(t *testing.T) {
	a := setup(t)
	path := "/v1/auth/login"

	runHTTPTests(t, a, []httpTest{
		{
			name: "token required", method: http.MethodPost, path: path,
			body:     marchallObj(t, LoginRequest{AccessToken: "  "}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"access_token": "this field is required"}),
		},
		{
			name: "unknown token", method: http.MethodPost, path: path,
			body:     marchallObj(t, LoginRequest{AccessToken: "forged"}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, core.Failure("could not verify access token")),
		},
		{
			name: "outside domain", method: http.MethodPost, path: path,
			body:     marchallObj(t, LoginRequest{AccessToken: "outside-token"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, core.Failure("access is restricted to academy accounts: someone@gmail.com")),
		},
	})

	t.Run("staff", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path, marchallObj(t, LoginRequest{AccessToken: "staff-token"}))
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		unmarchall(t, rec, &resp)
		assert.Equal(t, staffEmail, resp.Email)

		claims := new(Claims)
		token, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(a.conf.SecretKey), nil
		})
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, staffEmail, claims.Email)
		assert.Equal(t, "Scoredesk", claims.Issuer)

		// the session token opens the API
		req, rec = newAuthRequest(http.MethodGet, "/v1/departments", resp.Token)
		a.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_authRequired(t *testing.T) {
	a := setup(t)
	wrongKey := *a.conf
	wrongKey.SecretKey = "not-the-secret"
	forged, err := GenerateToken(GetUserClaims(core.Identity{Email: staffEmail}, &wrongKey), &wrongKey)
	require.NoError(t, err)

	runHTTPTests(t, a, []httpTest{
		{name: "departments", path: "/v1/departments", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "sheets", path: "/v1/sheets", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "sheet", path: "/v1/sheets/Template_x", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "lookup", path: "/v1/ws/lookup?sheet=x", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "forged", path: "/v1/sheets", token: forged, wantCode: http.StatusUnauthorized},
	})
}
