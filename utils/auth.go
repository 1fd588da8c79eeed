// utils/auth.go
package utils

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for password hashes.
var BcryptCost = 14

var (
	jwtSecret      []byte
	jwtExpiryHours = 24
)

// ConfigureJWT sets the signing secret and token lifetime.
func ConfigureJWT(secret string, expiryHours int) {
	jwtSecret = []byte(secret)
	if expiryHours > 0 {
		jwtExpiryHours = expiryHours
	}
}

// TokenMaxAge is the token lifetime in seconds, used for the auth cookie.
func TokenMaxAge() int {
	return jwtExpiryHours * 3600
}

// Generate JWT secret key (run once initially)
func GenerateJWTSecret() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate JWT secret")
	}
	return base64.StdEncoding.EncodeToString(key)
}

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Generate JWT token
func GenerateToken(userID, organizationID, role string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("JWT_SECRET not set")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"orgId": organizationID,
		"role":  role,
		"exp":   now.Add(time.Duration(jwtExpiryHours) * time.Hour).Unix(),
		"iat":   now.Unix(),
	})
	return token.SignedString(jwtSecret)
}

// Auth middleware
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			RespondWithError(c, 401, "Authorization header required")
			c.Abort()
			return
		}

		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:6]) == "BEARER" {
			tokenString = tokenString[7:]
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return jwtSecret, nil
		})

		if err != nil || !token.Valid {
			RespondWithError(c, 401, "Invalid token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			RespondWithError(c, 401, "Invalid token claims")
			c.Abort()
			return
		}
		c.Set("userId", claims["sub"])
		c.Set("organizationId", claims["orgId"])
		c.Set("role", claims["role"])

		c.Next()
	}
}

// RequireRole rejects requests whose token does not carry one of the roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		RespondWithError(c, 403, "Insufficient permissions")
		c.Abort()
	}
}

// OnboardingCheck reports whether a user has finished onboarding.
type OnboardingCheck func(ctx context.Context, userID uuid.UUID) (bool, error)

// RequireOnboardingCompleted rejects requests from users that have not
// completed onboarding. It must run after AuthMiddleware.
func RequireOnboardingCompleted(isCompleted OnboardingCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := ContextUUID(c, "userId")
		if !ok {
			RespondWithError(c, 401, "Invalid token claims")
			c.Abort()
			return
		}
		done, err := isCompleted(c.Request.Context(), userID)
		if err != nil {
			RespondWithAppError(c, err)
			c.Abort()
			return
		}
		if !done {
			c.JSON(403, APIResponse{
				Success: false,
				Error:   &ErrorInfo{Type: "onboarding_required", Message: "Complete onboarding first"},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ContextUUID reads a UUID claim stored by AuthMiddleware.
func ContextUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	value, exists := c.Get(key)
	if !exists {
		return uuid.Nil, false
	}
	s, ok := value.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
