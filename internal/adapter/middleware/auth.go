package middleware

import (
	"net/http"
	"strings"

	"hr-admin-backend/internal/adapter/response"
	"hr-admin-backend/internal/auth"
	"hr-admin-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
)

type TokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// Authenticate resolves a Bearer token into a principal on the request
// context. Requests without a token continue anonymously; a token that is
// present but invalid is rejected.
func Authenticate(p TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if h == "" {
				return next(c)
			}
			scheme, token, found := strings.Cut(h, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return response.Fail(c, http.StatusUnauthorized, "malformed Authorization header")
			}
			principal, err := p.Parse(strings.TrimSpace(token))
			if err != nil {
				return response.Fail(c, http.StatusUnauthorized, "invalid or expired token")
			}
			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithPrincipal(req.Context(), principal)))
			return next(c)
		}
	}
}

// Authorize answers 401 without a principal and 403 when its role is not in
// roles. With no roles, any authenticated user passes.
func Authorize(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := auth.PrincipalFromContext(c.Request().Context())
			if !ok {
				return response.Fail(c, http.StatusUnauthorized, "authentication required")
			}
			if len(roles) == 0 {
				return next(c)
			}
			for _, r := range roles {
				if p.Role == r {
					return next(c)
				}
			}
			return response.Fail(c, http.StatusForbidden, "insufficient role")
		}
	}
}
