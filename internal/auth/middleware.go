package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/utils"
)

const sessionContextKey = "auth_session"

// AuthSession is the verified identity attached to a request. Handlers and
// services receive it explicitly; nothing reads authentication state from
// a global.
type AuthSession struct {
	UserID    string          `json:"user_id"`
	FullName  string          `json:"full_name"`
	Email     string          `json:"email"`
	AvatarURL string          `json:"avatar_url"`
	Role      models.UserRole `json:"role"`
}

// IsAdmin reports whether the session belongs to an admin rater.
func (s *AuthSession) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// Verifier validates bearer tokens against the identity provider.
type Verifier struct {
	client *casdoorsdk.Client
	logger utils.Logger
}

// VerifierConfig holds the identity provider connection settings.
type VerifierConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

func NewVerifier(cfg VerifierConfig, logger utils.Logger) *Verifier {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &Verifier{client: client, logger: logger}
}

// VerifyToken parses and validates a bearer token, returning the session
// it represents.
func (v *Verifier) VerifyToken(token string) (*AuthSession, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	role := models.RoleLearner
	if claims.User.IsAdmin {
		role = models.RoleAdmin
	}

	return &AuthSession{
		UserID:    claims.User.Id,
		FullName:  claims.User.DisplayName,
		Email:     claims.User.Email,
		AvatarURL: claims.User.Avatar,
		Role:      role,
	}, nil
}

// Middleware authenticates every request and stores the session in the
// Gin context.
func (v *Verifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		session, err := v.VerifyToken(token)
		if err != nil {
			v.logger.Warn("token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// RequireAdmin rejects requests whose session is not an admin rater. It
// must run after Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok || !session.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// SessionFromContext retrieves the verified session for the request.
func SessionFromContext(c *gin.Context) (*AuthSession, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*AuthSession)
	return session, ok
}

// SetSession attaches a session to the context directly. Tests use this to
// bypass token verification.
func SetSession(c *gin.Context, session *AuthSession) {
	c.Set(sessionContextKey, session)
}
