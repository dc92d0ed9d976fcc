package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equiptrak/internal/authz"
	apperrors "equiptrak/pkg/errors"
	"equiptrak/pkg/service"
	"equiptrak/pkg/utils"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		logger:     logger,
	}
}

// Auth validates the bearer token and resolves the caller's role once. The
// resulting Principal is stored in the request context.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}

		role, err := authz.ParseRole(claims.Role)
		if err != nil {
			m.logger.Warn("AuthMiddleware: token carries an unknown role",
				zap.String("subject", claims.Subject), zap.String("role", claims.Role))
			return utils.ErrorResponse(c, err, m.logger)
		}

		principal := &authz.Principal{
			Subject:   claims.Subject,
			Email:     claims.Email,
			Role:      role,
			CompanyID: claims.CompanyID,
		}
		c.SetRequest(c.Request().WithContext(authz.WithPrincipal(c.Request().Context(), principal)))

		return next(c)
	}
}

// RequireRole rejects principals whose role is not listed. It must run after
// Auth.
func RequireRole(logger *zap.Logger, roles ...authz.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := authz.PrincipalFromContext(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, err, logger)
			}
			for _, r := range roles {
				if p.Role == r {
					return next(c)
				}
			}
			return utils.ErrorResponse(c, apperrors.ErrForbidden, logger)
		}
	}
}
