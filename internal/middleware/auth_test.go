package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechcare/clinic-api/internal/model"
	"github.com/speechcare/clinic-api/pkg/auth"
)

func newAuthRouter(jwtService *auth.JWTService) (*gin.Engine, *uuid.UUID, *model.UserRole) {
	gin.SetMode(gin.TestMode)

	var gotID uuid.UUID
	var gotRole model.UserRole

	r := gin.New()
	r.Use(NewAuthMiddleware(jwtService).Authenticate())
	r.GET("/ping", func(c *gin.Context) {
		gotID = CallerID(c)
		gotRole = CallerRole(c)
		c.Status(http.StatusOK)
	})
	return r, &gotID, &gotRole
}

func TestAuthenticateSetsCallerIdentity(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	r, gotID, gotRole := newAuthRouter(jwtService)

	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID, "ann@example.com", "patient")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, *gotID)
	assert.Equal(t, model.UserRolePatient, *gotRole)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	r, _, _ := newAuthRouter(auth.NewJWTService("test-secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	r, _, _ := newAuthRouter(auth.NewJWTService("test-secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	r, _, _ := newAuthRouter(auth.NewJWTService("test-secret", time.Hour))

	token, err := auth.NewJWTService("other-secret", time.Hour).GenerateToken(uuid.New(), "x@example.com", "patient")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
