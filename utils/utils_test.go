package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingpro-backend/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
	BcryptCost = 4
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+1 (555) 123-4567"))
	assert.True(t, ValidatePhone("5551234567"))
	assert.False(t, ValidatePhone("abc"))
	assert.False(t, ValidatePhone("+0123"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "studio-nova", Slugify("  Studio Nova "))
	assert.Equal(t, "o2-hyperbaric-center", Slugify("O2 Hyperbaric -- Center!"))
}

func TestRelativeDay(t *testing.T) {
	now := time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "Today", RelativeDay(now, now.Add(5*time.Hour)))
	assert.Equal(t, "Tomorrow", RelativeDay(now, now.AddDate(0, 0, 1)))
	assert.Equal(t, "Yesterday", RelativeDay(now, now.AddDate(0, 0, -1)))
	assert.Equal(t, "In 3 days", RelativeDay(now, now.AddDate(0, 0, 3)))
	assert.Equal(t, "5 days ago", RelativeDay(now, now.AddDate(0, 0, -5)))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestAuthMiddleware(t *testing.T) {
	ConfigureJWT("test-secret", 1)
	token, err := GenerateToken("11111111-1111-1111-1111-111111111111", "22222222-2222-2222-2222-222222222222", "owner")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		orgID, ok := ContextUUID(c, "organizationId")
		require.True(t, ok)
		role, _ := c.Get("role")
		c.JSON(http.StatusOK, gin.H{"org": orgID.String(), "role": role})
	})

	t.Run("valid bearer token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "22222222-2222-2222-2222-222222222222")
		assert.Contains(t, w.Body.String(), "owner")
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("tampered token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/owner", func(c *gin.Context) { c.Set("role", "staff") }, RequireRole("owner"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/owner", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireOnboardingCompleted(t *testing.T) {
	done := map[string]bool{"11111111-1111-1111-1111-111111111111": true}
	check := func(_ context.Context, userID uuid.UUID) (bool, error) {
		if userID.String() == "33333333-3333-3333-3333-333333333333" {
			return false, errors.New("database is down")
		}
		return done[userID.String()], nil
	}

	r := gin.New()
	r.GET("/feature", func(c *gin.Context) {
		if id := c.GetHeader("X-User"); id != "" {
			c.Set("userId", id)
		}
	}, RequireOnboardingCompleted(check), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name string
		user string
		want int
	}{
		{"completed", "11111111-1111-1111-1111-111111111111", http.StatusOK},
		{"pending", "22222222-2222-2222-2222-222222222222", http.StatusForbidden},
		{"lookup fails", "33333333-3333-3333-3333-333333333333", http.StatusInternalServerError},
		{"no user", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/feature", nil)
			req.Header.Set("X-User", tt.user)
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), "onboarding_required")
			}
		})
	}
}

func TestRespondWithAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     int
		errType  string
		contains string
	}{
		{"quota", apperror.NewQuotaExceededError("monthly appointment limit reached"), http.StatusForbidden, "quota_exceeded", "monthly appointment limit"},
		{"slot", apperror.NewSlotUnavailableError("requested time is not available"), http.StatusConflict, "slot_unavailable", "not available"},
		{"plain error", errors.New("connection refused"), http.StatusInternalServerError, "internal_error", "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			RespondWithAppError(c, tt.err)

			assert.Equal(t, tt.code, w.Code)
			var resp APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.errType, resp.Error.Type)
			assert.Contains(t, resp.Error.Message, tt.contains)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}
