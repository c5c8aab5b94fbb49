package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allservices/marketplace-api/internal/handler"
	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/pkg/auth"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
	"github.com/allservices/marketplace-api/pkg/httputil"
)

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate verifies the bearer token and stores the caller in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("missing authorization header")))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("invalid authorization format")))
			return
		}

		claims, err := m.jwt.ValidateToken(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}
		id, _ := claims.UserID()

		handler.SetPrincipal(c, handler.Principal{
			ID:    id,
			Email: claims.Email,
			Role:  model.StoredRole(claims.Role),
		})
		c.Next()
	}
}

// RequireCapability lets the request through only if the caller's role
// grants capability.
func (m *AuthMiddleware) RequireCapability(capability model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := handler.CurrentPrincipal(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			return
		}
		if !p.Role.Has(capability) {
			httputil.RespondWithError(c, apperrors.Forbidden(string(capability)+" role required"))
			return
		}
		c.Next()
	}
}
