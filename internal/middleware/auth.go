package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/pkg/errors"
	"github.com/jwalitptl/pdf-api/pkg/httputil"
)

const ContextUser = "user"

// TokenVerifier resolves a bearer token to its user.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*model.User, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate requires a valid bearer token and stores the user in the
// context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return m.authenticate(true)
}

// Optional authenticates when a token is present and lets anonymous
// requests through.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return m.authenticate(false)
}

func (m *AuthMiddleware) authenticate(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				c.Header("WWW-Authenticate", "Bearer")
				httputil.RespondWithError(c, errors.Unauthorized("not authenticated", nil))
				return
			}
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			httputil.RespondWithError(c, errors.Unauthorized("invalid authorization format", nil))
			return
		}

		user, err := m.verifier.VerifyToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.KindOf(err) == errors.KindUnauthorized {
				c.Header("WWW-Authenticate", "Bearer")
			}
			httputil.RespondWithError(c, err)
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
