package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

// mountGroup registers g under /api/v1 on a fresh engine.
func mountGroup(g *DomainGroup) *gin.Engine {
	engine := gin.New()
	g.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func echo(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	r := NewRouter(gin.New())
	r.Register(NewDomainGroup("leasing", "/tenants"))
	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("leasing", "/tenants")
	group.GET("/ping", echo("pong"))

	r.Register(group)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/tenants/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroupAccessors(t *testing.T) {
	g := NewDomainGroup("leasing", "/tenants")
	assert.Equal(t, "leasing", g.Name())
	assert.Equal(t, "/tenants", g.Prefix())
}

func TestDomainGroupMethods(t *testing.T) {
	tests := []struct {
		method   string
		register func(g *DomainGroup, h gin.HandlerFunc)
		path     string
	}{
		{http.MethodGet, func(g *DomainGroup, h gin.HandlerFunc) { g.GET("/items", h) }, "/items"},
		{http.MethodPost, func(g *DomainGroup, h gin.HandlerFunc) { g.POST("/items", h) }, "/items"},
		{http.MethodPut, func(g *DomainGroup, h gin.HandlerFunc) { g.PUT("/items/:id", h) }, "/items/123"},
		{http.MethodPatch, func(g *DomainGroup, h gin.HandlerFunc) { g.PATCH("/items/:id", h) }, "/items/123"},
		{http.MethodDelete, func(g *DomainGroup, h gin.HandlerFunc) { g.DELETE("/items/:id", h) }, "/items/123"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			g := NewDomainGroup("leasing", "/units")
			tt.register(g, echo(tt.method))

			w := serve(mountGroup(g), tt.method, "/api/v1/units"+tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.method, w.Body.String())
		})
	}
}

func TestDomainGroupMiddleware(t *testing.T) {
	g := NewDomainGroup("leasing", "/units")
	g.Use(func(c *gin.Context) {
		c.Header("X-Group-Middleware", "applied")
		c.Next()
	})
	g.GET("/items", echo("ok"))

	w := serve(mountGroup(g), http.MethodGet, "/api/v1/units/items")
	assert.Equal(t, "applied", w.Header().Get("X-Group-Middleware"))
}

func TestDomainGroupSubgroups(t *testing.T) {
	g := NewDomainGroup("billing", "/billing")
	g.Group("payments", "/payments").GET("", echo("payments list"))
	g.Group("intents", "/intents").GET("", echo("intents list"))

	engine := mountGroup(g)

	w := serve(engine, http.MethodGet, "/api/v1/billing/payments")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "payments list", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/billing/intents")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "intents list", w.Body.String())
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Use(func(c *gin.Context) {
		c.Header("X-API-Middleware", "applied")
		c.Next()
	})

	g := NewDomainGroup("leasing", "/tenants")
	g.GET("/ping", echo("pong"))
	r.Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/tenants/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "applied", w.Header().Get("X-API-Middleware"))

	// routes mounted directly on the engine stay outside the chain
	engine.GET("/health", echo("ok"))
	w = serve(engine, http.MethodGet, "/health")
	assert.Empty(t, w.Header().Get("X-API-Middleware"))
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	leasing := NewDomainGroup("leasing", "/tenants")
	leasing.GET("", echo("tenants"))

	maintenance := NewDomainGroup("maintenance", "/tickets")
	maintenance.GET("", echo("tickets"))

	r.Register(leasing).Register(maintenance)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/tenants")
	assert.Equal(t, "tenants", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/tickets")
	assert.Equal(t, "tickets", w.Body.String())
}

func TestChainedRegistration(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("leasing", "/tenants")
	g.GET("/a", echo("a")).
		POST("/b", echo("b")).
		PUT("/c", echo("c"))

	r.Register(g).Setup()

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/tenants/a"},
		{http.MethodPost, "/api/v1/tenants/b"},
		{http.MethodPut, "/api/v1/tenants/c"},
	} {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
	}
}
