package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/impact7/scoredesk/core"
)

// jwtContextKey is where the JWT middleware stores the parsed token.
const jwtContextKey = "userToken"

// newJWTConfig is the JWT auth middleware config. Browsers cannot set headers on websocket
// upgrades, so the token is also read from the "token" query parameter there.
func newJWTConfig(conf *core.Config, lookup ...string) middleware.JWTConfig {
	cfg := middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	}
	if len(lookup) > 0 {
		cfg.TokenLookup = lookup[0]
	}
	return cfg
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

func GetUserClaims(id core.Identity, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   id.Email,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: id.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	cfg := newJWTConfig(conf)
	token := jwt.NewWithClaims(jwt.GetSigningMethod(cfg.SigningMethod), claims)

	ss, err := token.SignedString(cfg.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

type authApi struct {
	ServerDeps
}

func registerAuthAPI(g *echo.Group, deps ServerDeps) {
	api := authApi{deps}
	g.POST("/auth/login", api.login)
}

// login trades a Google access token for a session token. Accounts outside the academy
// domains get no session at all.
func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	id, err := api.Authenticator.Authenticate(ctx.Request().Context(), data.AccessToken)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(GetUserClaims(id, api.Conf), api.Conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	api.Logger.Info("signed in", id)

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Email: id.Email})
}
