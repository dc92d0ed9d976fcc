package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/pkg/service"
)

func newProtectedServer(t *testing.T, jwtSvc service.JWTService, roles ...authz.Role) *echo.Echo {
	t.Helper()
	e := echo.New()
	mw := NewAuthMiddleware(jwtSvc, zap.NewNop())
	g := e.Group("", mw.Auth)
	if len(roles) > 0 {
		g.Use(RequireRole(zap.NewNop(), roles...))
	}
	g.GET("/whoami", func(c echo.Context) error {
		p, err := authz.PrincipalFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, string(p.Role))
	})
	return e
}

func do(e *echo.Echo, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthResolvesRole(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", time.Hour)
	e := newProtectedServer(t, jwtSvc)

	token, err := jwtSvc.GenerateToken("u1", "admin@equiptrak.local", "admin", nil)
	require.NoError(t, err)

	rec := do(e, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
}

func TestAuthRejects(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", time.Hour)
	e := newProtectedServer(t, jwtSvc)

	unknownRole, err := jwtSvc.GenerateToken("u1", "x@y.z", "superuser", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "Bearer "+unknownRole).Code)
}

func TestRequireRole(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", time.Hour)
	e := newProtectedServer(t, jwtSvc, authz.RoleAdmin)

	company := uint64(2)
	customer, err := jwtSvc.GenerateToken("u2", "c@customer.example", "customer", &company)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, do(e, "Bearer "+customer).Code)
}
