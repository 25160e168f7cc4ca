package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// notFoundBills answers every lookup with ErrNotFound
type notFoundBills struct{}

func (notFoundBills) Generate(context.Context, appbilling.GenerateBillRequest) (*appbilling.GenerateBillResult, error) {
	return nil, shared.ErrNotFound
}

func (notFoundBills) RegenerateArtifact(context.Context, uuid.UUID) (*appbilling.BillResponse, error) {
	return nil, shared.ErrNotFound
}

func (notFoundBills) ResendNotification(context.Context, uuid.UUID) (*appbilling.BillResponse, error) {
	return nil, shared.ErrNotFound
}

func (notFoundBills) MarkPaid(context.Context, uuid.UUID, appbilling.MarkPaidRequest) (*appbilling.BillResponse, error) {
	return nil, shared.ErrNotFound
}

func (notFoundBills) GetBill(context.Context, uuid.UUID) (*appbilling.BillResponse, error) {
	return nil, shared.ErrNotFound
}

func (notFoundBills) ListBills(context.Context, appbilling.BillListFilter) (*shared.Paginated[appbilling.BillResponse], error) {
	page := shared.NewPaginated([]appbilling.BillResponse{}, 0, 1, 20)
	return &page, nil
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Contains(t, r.Routes(), "GET /api/v1/test/ping")
}

func TestDomainGroup_Middleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("test", "/test").
		Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		}).
		POST("/items", func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
	g.RegisterRoutes(engine.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/test/items", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
	assert.Equal(t, "test", g.Name())
	assert.Equal(t, "/test", g.Prefix())
}

func TestBillAndSystemRoutes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Register(BillRoutes(handler.NewBillHandler(notFoundBills{}))).
		Register(SystemRoutes(handler.NewSystemHandler("rentdesk", "test"))).
		Setup()

	routes := r.Routes()
	for _, want := range []string{
		"POST /api/v1/bills",
		"GET /api/v1/bills",
		"GET /api/v1/bills/:id",
		"POST /api/v1/bills/:id/artifact",
		"POST /api/v1/bills/:id/notification",
		"POST /api/v1/bills/:id/payment",
		"GET /api/v1/system/health",
	} {
		assert.Contains(t, routes, want)
	}

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/bills", http.StatusOK},
		{http.MethodGet, "/api/v1/bills/" + uuid.NewString(), http.StatusNotFound},
		{http.MethodPost, "/api/v1/bills/" + uuid.NewString() + "/artifact", http.StatusNotFound},
		{http.MethodGet, "/api/v1/system/ping", http.StatusOK},
		{http.MethodGet, "/api/v1/system/health", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
	}
}
