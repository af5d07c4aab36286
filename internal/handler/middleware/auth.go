package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"devhours-api/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// AuthUser is the authenticated caller placed on the gin context. Addresses
// may be empty when the resolver is down; handlers that need one fail later
// with a domain error instead of a blanket 401.
type AuthUser struct {
	FID            int64
	PrimaryAddress string
	Addresses      []string
}

const ctxUserKey = "auth_user"

// TokenVerifier validates a Quick Auth token and returns the caller's FID.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (int64, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	resolver commands.AddressResolver
}

func NewAuthMiddleware(verifier TokenVerifier, resolver commands.AddressResolver) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		resolver: resolver,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		fid, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		user := AuthUser{FID: fid}
		if addrs, err := m.resolver.ResolveAddresses(c.Request.Context(), fid); err == nil {
			user.PrimaryAddress = addrs.Primary
			user.Addresses = addrs.All
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// OptionalAuth authenticates the request if a token is present, but does not abort on failure.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		fid, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			// Invalid token; continue without aborting.
			c.Next()
			return
		}

		user := AuthUser{FID: fid}
		if addrs, err := m.resolver.ResolveAddresses(c.Request.Context(), fid); err == nil {
			user.PrimaryAddress = addrs.Primary
			user.Addresses = addrs.All
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func GetUser(c *gin.Context) (AuthUser, bool) {
	val, exists := c.Get(ctxUserKey)
	if !exists {
		return AuthUser{}, false
	}

	user, ok := val.(AuthUser)
	return user, ok
}
