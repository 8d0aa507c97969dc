package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/tenancy/internal/infrastructure/auth"
	"github.com/orris-inc/tenancy/internal/shared/authorization"
	"github.com/orris-inc/tenancy/internal/shared/constants"
	"github.com/orris-inc/tenancy/internal/shared/logger"
	"github.com/orris-inc/tenancy/internal/shared/utils"
)

// TokenVerifier is satisfied by *auth.JWTService.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	logger   logger.Interface
}

func NewAuthMiddleware(verifier TokenVerifier, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth verifies the bearer token and stores the caller identity in
// the gin context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.verifier.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid token subject")
			c.Abort()
			return
		}
		actor, err := claims.Actor()
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid token role")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyRole, claims.Role.String())
		c.Set(constants.ContextKeyTenantID, claims.TenantID)
		c.Set(constants.ContextKeyActorKind, string(actor.Kind()))
		c.Set(constants.ContextKeyActorID, actor.ID())

		c.Next()
	}
}

// RequireTenantAccess rejects tenant users addressing another tenant through
// the :param path segment. Staff pass through.
func (m *AuthMiddleware) RequireTenantAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := utils.ParseIDParam(c, param, "tenant")
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		role := authorization.UserRole(c.GetString(constants.ContextKeyRole))
		if !authorization.CanAccessTenant(role, c.GetUint(constants.ContextKeyTenantID), tenantID) {
			m.logger.Warnw("tenant access denied",
				"user_id", c.GetUint(constants.ContextKeyUserID),
				"role", role,
				"tenant_id", tenantID,
			)
			utils.ErrorResponse(c, http.StatusForbidden, "access to this tenant is not allowed")
			c.Abort()
			return
		}

		c.Next()
	}
}
