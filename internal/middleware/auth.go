package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/inquirygate/inquirygate/internal/config"
	"github.com/inquirygate/inquirygate/internal/model"
)

const (
	HeaderGatewayKey = "X-Gateway-Key"
	ContextCaller    = "caller"
)

// AuthMiddleware accepts either a configured gateway key or an HS256 bearer
// token signed with the configured secret.
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	keys := make([]string, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		if apiKey := c.GetHeader(HeaderGatewayKey); apiKey != "" {
			if matchKey(keys, apiKey) {
				c.Set(ContextCaller, "key")
				c.Next()
				return
			}
			abortUnauthorized(c)
			return
		}

		if tokenString, ok := bearerToken(c.GetHeader("Authorization")); ok && len(secret) > 0 {
			subject, err := parseToken(tokenString, secret)
			if err == nil {
				c.Set(ContextCaller, subject)
				c.Next()
				return
			}
		}

		abortUnauthorized(c)
	}
}

func matchKey(keys []string, candidate string) bool {
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(candidate)) == 1 {
			return true
		}
	}
	return false
}

func bearerToken(header string) (string, bool) {
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header || strings.TrimSpace(tokenString) == "" {
		return "", false
	}
	return strings.TrimSpace(tokenString), true
}

// parseToken validates signature and exp, and returns the subject claim.
func parseToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	subject, _ := token.Claims.GetSubject()
	if subject == "" {
		subject = "jwt"
	}
	return subject, nil
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.Failed("unauthorized"))
}
