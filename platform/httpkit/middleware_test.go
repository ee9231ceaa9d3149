package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testJWTConfig struct{ secret string }

func (c testJWTConfig) GetJWTAccessSecret() string { return c.secret }

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authTestRouter(cfg JWTConfig, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		userID, _ := c.Get(ContextUserIDKey)
		orgID, hasOrg := c.Get(ContextOrgIDKey)
		resp := gin.H{"userId": userID}
		if hasOrg {
			resp["orgId"] = orgID
		}
		c.JSON(http.StatusOK, resp)
	})
	engine.GET("/protected", handlers...)
	return engine
}

func doRequest(engine *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_MissingToken(t *testing.T) {
	engine := authTestRouter(testJWTConfig{secret: "s3cret"})

	assert.Equal(t, http.StatusUnauthorized, doRequest(engine, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(engine, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(engine, "Bearer ").Code)
}

func TestAuthRequired_ValidToken(t *testing.T) {
	cfg := testJWTConfig{secret: "s3cret"}
	engine := authTestRouter(cfg)

	userID := uuid.New()
	orgID := uuid.New()
	token := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":    userID.String(),
		"type":   "access",
		"org_id": orgID.String(),
		"roles":  []string{"counselor"},
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	w := doRequest(engine, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), orgID.String())
}

func TestAuthRequired_RejectsWrongTokenType(t *testing.T) {
	cfg := testJWTConfig{secret: "s3cret"}
	engine := authTestRouter(cfg)

	token := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"type": "refresh",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	assert.Equal(t, http.StatusUnauthorized, doRequest(engine, "Bearer "+token).Code)
}

func TestAuthRequired_RejectsWrongSecret(t *testing.T) {
	engine := authTestRouter(testJWTConfig{secret: "s3cret"})

	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub":  uuid.New().String(),
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	assert.Equal(t, http.StatusUnauthorized, doRequest(engine, "Bearer "+token).Code)
}

func TestAuthRequired_RejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig{secret: "s3cret"}
	engine := authTestRouter(cfg)

	token := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"type": "access",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	assert.Equal(t, http.StatusUnauthorized, doRequest(engine, "Bearer "+token).Code)
}

func TestRequireRole(t *testing.T) {
	cfg := testJWTConfig{secret: "s3cret"}
	engine := authTestRouter(cfg, RequireRole("admin"))

	adminToken := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":   uuid.New().String(),
		"type":  "access",
		"roles": []string{"counselor", "admin"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusOK, doRequest(engine, "Bearer "+adminToken).Code)

	counselorToken := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":   uuid.New().String(),
		"type":  "access",
		"roles": []string{"counselor"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusForbidden, doRequest(engine, "Bearer "+counselorToken).Code)
}

func TestIPRateLimiter_BlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(1, 2, nil)

	engine := gin.New()
	engine.GET("/limited", limiter.RateLimit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
