package middleware

import (
	"context"
	"net/http"
	"strings"

	"booking-service/internal/auth"
	"booking-service/internal/dto"
	"booking-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys for user info
const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
)

type Introspector interface {
	Introspect(ctx context.Context, token string) (*auth.Identity, error)
}

// AuthRequired validates the Bearer token through the auth service and puts the caller
// into both the gin context and the request context seen by services.
func AuthRequired(authClient Introspector, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing Authorization header"))
			return
		}
		token, ok := ExtractBearerToken(authz)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid Authorization header"))
			return
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("empty token"))
			return
		}

		id, err := authClient.Introspect(c.Request.Context(), token)
		if err != nil {
			log.Warn("introspect failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token"))
			return
		}

		c.Set(CtxUserID, id.UserID)
		c.Set(CtxUserRole, id.Role)
		ctx := service.WithUserID(c.Request.Context(), id.UserID)
		ctx = service.WithRole(ctx, id.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole must run after AuthRequired.
func RequireRole(roles ...service.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(CtxUserRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewForbiddenError("insufficient role"))
	}
}

// UserID returns the authenticated caller, or uuid.Nil on public routes.
func UserID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(CtxUserID)
	id, _ := v.(uuid.UUID)
	return id
}

// ExtractBearerToken tolerates quoting and trailing junk that some clients append:
//
//	Bearer abc.def.ghi
//	Bearer "abc.def.ghi"
//	Bearer abc.def.ghi, extra
func ExtractBearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	scheme, rest, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	t := strings.Trim(strings.TrimSpace(rest), " \"'")
	if before, _, ok := strings.Cut(t, ","); ok {
		t = strings.Trim(before, " \"'")
	}
	if before, _, ok := strings.Cut(t, " "); ok {
		t = before
	}
	return strings.Trim(t, " \"'"), true
}
