package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"webmaker-events-api/utils"
)

const sessionUserKey = "session_user"
const devAdminKey = "dev_admin"

// SessionUser is the authenticated identity carried by the session token.
// The identity service issues the token; this service only verifies it.
type SessionUser struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`

	PrefLocale              string `json:"prefLocale"`
	SendEventCreationEmails bool   `json:"sendEventCreationEmails"`
}

type sessionClaims struct {
	SessionUser
	jwt.RegisteredClaims
}

func parseSession(c *gin.Context, jwtSecret string) *SessionUser {
	tokenString := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	} else if cookie, err := c.Cookie("webmaker_session"); err == nil {
		tokenString = cookie
	}
	if tokenString == "" {
		return nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	return &claims.SessionUser
}

// AuthMiddleware requires a valid session and stores it on the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := parseSession(c, jwtSecret)
		if user == nil {
			utils.SendError(c, http.StatusUnauthorized, "No valid user session was set")
			c.Abort()
			return
		}
		c.Set(sessionUserKey, user)
		c.Next()
	}
}

// OptionalAuth parses a session when one is present but lets anonymous
// requests through. Read endpoints use it to decide how much to reveal.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := parseSession(c, jwtSecret); user != nil {
			c.Set(sessionUserKey, user)
		}
		c.Next()
	}
}

// DevAdmin marks every request as trusted when the service runs in dev
// mode. Never enable outside a development database.
func DevAdmin(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if enabled {
			c.Set(devAdminKey, true)
		}
		c.Next()
	}
}

// SessionFromContext returns the authenticated user, if any.
func SessionFromContext(c *gin.Context) *SessionUser {
	if v, ok := c.Get(sessionUserKey); ok {
		if user, ok := v.(*SessionUser); ok {
			return user
		}
	}
	return nil
}

// IsTrusted reports whether the request runs in the trusted internal mode.
func IsTrusted(c *gin.Context) bool {
	return c.GetBool(devAdminKey)
}
