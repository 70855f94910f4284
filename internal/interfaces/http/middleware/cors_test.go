package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const storefrontOrigin = "https://tienda.pozinox.cl"

func newCORSRouter(cfg CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/api/v1/quotes/:id/pdf", func(c *gin.Context) {
		c.Header("Content-Disposition", `attachment; filename="cotizacion_POZ20240501001.pdf"`)
		c.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.4"))
	})
	return router
}

func corsRequest(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/quotes/1/pdf", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		req.Header.Set("Access-Control-Request-Headers", "authorization, x-api-token")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSWithConfig(t *testing.T) {
	router := newCORSRouter(CORSConfig{
		AllowOrigins:     []string{storefrontOrigin},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})

	t.Run("storefront can read the pdf filename", func(t *testing.T) {
		w := corsRequest(router, http.MethodGet, storefrontOrigin)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, storefrontOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
		assert.Contains(t, w.Header().Get("Vary"), "Origin")
	})

	t.Run("preflight lets the chatbot send its api token", func(t *testing.T) {
		w := corsRequest(router, http.MethodOptions, storefrontOrigin)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), APITokenHeader)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unknown origin gets no cors headers", func(t *testing.T) {
		w := corsRequest(router, http.MethodGet, "https://phishing.example")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("preflight from unknown origin still ends with 204", func(t *testing.T) {
		w := corsRequest(router, http.MethodOptions, "https://phishing.example")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same-origin request is untouched", func(t *testing.T) {
		w := corsRequest(router, http.MethodGet, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig_Wildcard(t *testing.T) {
	router := newCORSRouter(CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true})

	w := corsRequest(router, http.MethodGet, "http://localhost:3000")

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"), "credentials are never sent with a wildcard")
	assert.Empty(t, w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_DefaultHasNoOrigins(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.GET("/api/v1/catalog/home", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/home", nil)
	req.Header.Set("Origin", storefrontOrigin)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	cfg := DefaultCORSConfig()
	assert.Empty(t, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowHeaders, APITokenHeader)
	assert.Contains(t, cfg.ExposeHeaders, "Content-Disposition")
}
