package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/auth"
)

const contextTokenKey = "userToken"

var errUnauthorized = errors.New("user not authenticated")

// newJWTConfig returns the JWT auth middleware config verifying the tokens signed by tokens.
func newJWTConfig(tokens *auth.JWTIssuer) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    tokens.Key(),
		SigningMethod: auth.SigningMethod.Alg(),
		ContextKey:    contextTokenKey,
		Claims:        &auth.Claims{},
	}
}

func getContextClaims(ctx echo.Context) (auth.Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*auth.Claims); ok {
			return *claims, nil
		}
	}
	return auth.Claims{}, errUnauthorized
}

// contextCPF returns the CPF of the authenticated account.
func contextCPF(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// contextPrincipal returns the authenticated account for logging; it is empty on public routes.
func contextPrincipal(ctx echo.Context) core.Principal {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return core.Principal{}
	}
	id := claims.Identity()
	return core.Principal{CPF: id.CPF, Nome: id.Nome, Email: id.Email}
}
