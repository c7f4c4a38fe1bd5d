package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie holding the operator token.
const CookieName = "ledger_session"

const (
	operatorSubject = "operator"
	tokenTTL        = 72 * time.Hour
)

// Auth issues and checks operator tokens. When disabled every request is
// let through.
type Auth struct {
	secret  []byte
	enabled bool
}

func NewAuth(secret string, enabled bool) *Auth {
	return &Auth{secret: []byte(secret), enabled: enabled}
}

func (a *Auth) Enabled() bool { return a.enabled }

// GenerateToken signs an operator token and returns it with its expiry.
func (a *Auth) GenerateToken() (string, time.Time, error) {
	exp := time.Now().Add(tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   operatorSubject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	return signed, exp, err
}

// ValidateToken parses an HS256 token signed with the configured secret.
func (a *Auth) ValidateToken(tokenStr string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject != operatorSubject {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// tokenFrom reads the bearer header first, then the session cookie.
func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

func (a *Auth) authorized(c *gin.Context) bool {
	tokenString := tokenFrom(c)
	if tokenString == "" {
		return false
	}
	claims, err := a.ValidateToken(tokenString)
	if err != nil {
		return false
	}
	c.Set("subject", claims.Subject)
	return true
}

// RequireAuth ensures a valid token is present on API requests.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.enabled {
			c.Next()
			return
		}
		if !a.authorized(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid token"})
			return
		}
		c.Next()
	}
}

// RequirePageAuth sends browsers without a valid session to the login page.
func (a *Auth) RequirePageAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.enabled {
			c.Next()
			return
		}
		if !a.authorized(c) {
			c.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}
