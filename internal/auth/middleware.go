package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	claimsKey  = "auth.claims"
	sessionKey = "auth.session"
)

// Middleware verifies the bearer token and attaches the application session.
// Users without a team get a session with an empty TeamID.
func Middleware(verifier *Verifier, resolver *MembershipResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "details": err.Error()})
			return
		}

		session := domain.Session{UserID: claims.Subject, Email: claims.Email}
		membership, err := resolver.Resolve(c.Request.Context(), claims)
		switch {
		case err == nil:
			session.TeamID = membership.TeamID
		case errors.Is(err, domain.ErrNoTeam):
		case errors.Is(err, domain.ErrStoreUnavailable):
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Data store unavailable"})
			return
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session check failed", "details": err.Error()})
			return
		}

		c.Set(claimsKey, claims)
		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireTeam rejects sessions that do not belong to a team yet.
func RequireTeam() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
			return
		}
		if s.TeamID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domain.ErrNoTeam.Error()})
			return
		}
		c.Next()
	}
}

func SessionFrom(c *gin.Context) (domain.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return domain.Session{}, false
	}
	s, ok := v.(domain.Session)
	return s, ok
}

func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// SetSession replaces the session of the request, e.g. after creating a team.
func SetSession(c *gin.Context, s domain.Session) {
	c.Set(sessionKey, s)
}
