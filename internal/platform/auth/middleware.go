package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin     = "admin"
	RoleClinician = "clinician"
)

// DevUserHeader lets local development switch between users without tokens.
const DevUserHeader = "X-Dev-User"

// Claims covers the fields of Cognito ID and access tokens as well as generic
// OIDC tokens that carry a "roles" array.
type Claims struct {
	jwt.RegisteredClaims
	Email           string   `json:"email"`
	CognitoUsername string   `json:"cognito:username"`
	Username        string   `json:"username"`
	CognitoGroups   []string `json:"cognito:groups"`
	Roles           []string `json:"roles"`
}

// User maps the claims onto the caller identity. Cognito groups count as
// roles.
func (c *Claims) User() User {
	username := c.CognitoUsername
	if username == "" {
		username = c.Username
	}
	roles := make([]string, 0, len(c.Roles)+len(c.CognitoGroups))
	roles = append(roles, c.Roles...)
	roles = append(roles, c.CognitoGroups...)
	return User{ID: c.Subject, Username: username, Email: c.Email, Roles: roles}
}

type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	// SigningKey switches validation to HS256 with a shared secret.
	SigningKey []byte
}

// resolveJWKSURL picks the key endpoint: the configured URL, the one named in
// the issuer's discovery document, or the conventional issuer/.well-known/jwks.json.
func resolveJWKSURL(cfg JWTConfig) string {
	if cfg.JWKSURL != "" || cfg.Issuer == "" {
		return cfg.JWKSURL
	}
	if provider, err := DiscoverOIDC(context.Background(), cfg.Issuer); err == nil {
		return provider.JWKSURI
	}
	return strings.TrimRight(cfg.Issuer, "/") + "/.well-known/jwks.json"
}

func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	var cache *JWKSCache
	if len(cfg.SigningKey) == 0 {
		cache = NewJWKSCache(resolveJWKSURL(cfg), defaultJWKSCacheTTL)
	}

	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if len(cfg.SigningKey) > 0 {
		opts = append(opts, jwt.WithValidMethods([]string{"HS256"}))
	} else {
		opts = append(opts, jwt.WithValidMethods([]string{"RS256"}))
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			scheme, tokenStr, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenStr) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			ctx := c.Request().Context()
			keyFunc := func(*jwt.Token) (interface{}, error) { return cfg.SigningKey, nil }
			if cache != nil {
				keyFunc = cache.keyFunc(ctx)
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenStr), claims, keyFunc, opts...)
			if err != nil || !token.Valid || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.SetRequest(c.Request().WithContext(WithUser(ctx, claims.User())))
			return next(c)
		}
	}
}

// DevAuthMiddleware authenticates every request as an admin. The user ID is
// "dev-user" unless the X-Dev-User header names another one.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(DevUserHeader))
			if id == "" {
				id = "dev-user"
			}
			u := User{ID: id, Username: id, Email: id + "@localhost", Roles: []string{RoleAdmin}}
			c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), u)))
			return next(c)
		}
	}
}
