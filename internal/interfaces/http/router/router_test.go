package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/backend/internal/domain/identity"
	"github.com/opsboard/backend/internal/domain/shared"
	"github.com/opsboard/backend/internal/interfaces/http/handler"
	"github.com/opsboard/backend/internal/interfaces/http/middleware"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type actors map[string]identity.Actor

func (m actors) ResolveActor(_ context.Context, id string) (identity.Actor, error) {
	if a, ok := m[id]; ok {
		return a, nil
	}
	return identity.Actor{}, shared.NewDomainError(shared.CodeUnauthorized, "unknown user")
}

// whoami echoes the resolved actor
type whoami struct{}

func (whoami) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/whoami", func(c *gin.Context) {
		actor, _ := middleware.GetActor(c)
		c.String(http.StatusOK, actor.UserID)
	})
}

func newEngine(t *testing.T, production bool) *gin.Engine {
	t.Helper()
	engine, err := NewEngine(EngineConfig{
		ServiceName: "opsboard-test",
		Production:  production,
		CORS:        middleware.DefaultCORSConfig(),
		MaxBodySize: 1 << 20,
		Auth: middleware.AuthConfig{
			Actors:         actors{"u-1": {UserID: "u-1", Role: identity.RoleAdmin, LocationID: "loc-central"}},
			AllowDevHeader: true,
		},
	}, handler.NewHealthHandler(okPinger{}), whoami{})
	require.NoError(t, err)
	return engine
}

func serve(engine *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter_BasePath(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
	assert.Equal(t, "/api/v2", r.Setup().BasePath())
}

func TestNewEngine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := newEngine(t, false)

	w := serve(engine, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = serve(engine, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, "/api/v1/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(engine, "/api/v1/whoami", map[string]string{middleware.DevUserHeader: "u-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())

	w = serve(engine, "/api/v1/whoami", map[string]string{middleware.DevUserHeader: "u-ghost"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(engine, "/api/v1/nothing-here", map[string]string{middleware.DevUserHeader: "u-1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewEngine_ProductionIgnoresDevHeader(t *testing.T) {
	defer gin.SetMode(gin.TestMode)
	engine := newEngine(t, true)

	w := serve(engine, "/api/v1/whoami", map[string]string{middleware.DevUserHeader: "u-1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(engine, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
