// Package session authenticates requests from the signed "session" cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/wtaconnect/backoffice/internal/logger"
)

const (
	DefaultCookieName = "session"
	userKey           = "session.user"
)

var ErrUnauthenticated = errors.New("usuário não autenticado ou sem tenant vinculado")

// User is the identity carried by the session token.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	TenantID int64  `json:"id_tenant"`
}

// DisplayName is the name used to stamp audit fields.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Verifier validates HS256 session tokens.
type Verifier struct {
	secret []byte
	cookie string
}

func NewVerifier(secret, cookieName string) *Verifier {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Verifier{secret: []byte(secret), cookie: cookieName}
}

// Parse verifies token and extracts the user. A token without a tenant is rejected.
func (v *Verifier) Parse(token string) (*User, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	u := &User{
		ID:    claimString(claims["id"]),
		Name:  claimString(claims["name"]),
		Email: claimString(claims["email"]),
	}
	u.IsAdmin, _ = claims["isAdmin"].(bool)

	tenant := claimString(claims["id_tenant"])
	if tenant == "" {
		tenant = claimString(claims["empresa"])
	}
	id, err := strconv.ParseInt(tenant, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrUnauthenticated
	}
	u.TenantID = id
	return u, nil
}

// Middleware rejects requests without a valid session and stores the user on the context.
func (v *Verifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := v.token(c)
		if token == "" {
			abort(c, ErrUnauthenticated)
			return
		}
		u, err := v.Parse(token)
		if err != nil {
			abort(c, err)
			return
		}
		c.Set(userKey, u)
		c.Request = c.Request.WithContext(logger.WithTenant(c.Request.Context(), u.TenantID))
		c.Next()
	}
}

func (v *Verifier) token(c *gin.Context) string {
	if cookie, err := c.Cookie(v.cookie); err == nil && cookie != "" {
		return cookie
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": ErrUnauthenticated.Error(),
		"error":   err.Error(),
	})
}

// CurrentUser returns the user set by Middleware.
func CurrentUser(c *gin.Context) (*User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*User)
	return u, ok
}

// Sign issues a session token for u, valid for ttl.
func Sign(secret string, u User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"isAdmin":   u.IsAdmin,
		"id_tenant": u.TenantID,
		"exp":       time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func claimString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatInt(int64(x), 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
