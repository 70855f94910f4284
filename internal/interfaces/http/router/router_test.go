package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	t.Run("defaults to v1", func(t *testing.T) {
		r := NewRouter(gin.New())
		assert.Equal(t, "v1", r.apiVersion)
		assert.Empty(t, r.registrars)
	})

	t.Run("custom version", func(t *testing.T) {
		r := NewRouter(gin.New(), WithAPIVersion("v2"))
		assert.Equal(t, "v2", r.apiVersion)
	})
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/products", func(c *gin.Context) { c.String(http.StatusOK, "products") })
	quotes := NewDomainGroup("quotes", "/quotes")
	quotes.GET("", func(c *gin.Context) { c.String(http.StatusOK, "quotes") })

	api := r.Register(catalog).RegisterGroups([]*DomainGroup{quotes}).Setup()
	assert.Equal(t, "/api/v1", api.BasePath())
	assert.Len(t, r.registrars, 2)

	w := serve(engine, http.MethodGet, "/api/v1/catalog/products")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "products", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/quotes")
	assert.Equal(t, "quotes", w.Body.String())
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("items", "/items")
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	g.GET("/:id", ok).
		POST("", ok).
		PUT("/:id", ok).
		PATCH("/:id", ok).
		DELETE("/:id", ok)
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/items/7"},
		{http.MethodPost, "/api/v1/items"},
		{http.MethodPut, "/api/v1/items/7"},
		{http.MethodPatch, "/api/v1/items/7"},
		{http.MethodDelete, "/api/v1/items/7"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.method, w.Body.String())
		})
	}
}

func TestDomainGroup_Middleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("admin", "/admin")
	g.Use(nil, func(c *gin.Context) {
		c.Header("X-Guard", "applied")
		c.Next()
	})
	assert.Len(t, g.middleware, 1, "nil middleware is skipped")

	users := g.Group("users", "/users")
	users.GET("", func(c *gin.Context) { c.String(http.StatusOK, "users") })
	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/admin/users")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "applied", w.Header().Get("X-Guard"), "subgroups inherit middleware")
	assert.Equal(t, "admin", g.Name())
	assert.Equal(t, "/admin", g.Prefix())
	assert.Equal(t, 1, g.RouteCount())
}
