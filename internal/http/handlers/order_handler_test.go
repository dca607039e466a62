// README: Handler authorization tests; auth and role gates fire before any
// service call.
package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"agrilink/internal/auth"
	"agrilink/internal/http/handlers"
	"agrilink/internal/http/middleware"
	"agrilink/internal/modules/order"
	"agrilink/internal/modules/user"
)

var testTokens = auth.NewTokenManager("handler-test-secret", time.Hour)

// buildTestRouter wires the auth gates around the order handler. Services stay
// nil; every request here is rejected before a handler touches them.
func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewOrderHandler(order.NewService(nil, nil, nil, nil))
	authed := middleware.AuthRequired(testTokens)
	r.POST("/api/orders", authed, middleware.RoleRequired(user.RoleBuyer), h.Create)
	r.GET("/api/orders/:id", authed, h.Get)
	return r
}

func tokenFor(t *testing.T, id int64, role user.Role) string {
	t.Helper()
	token, err := testTokens.Issue(&user.User{ID: id, Email: "t@example.com", Role: role, Name: "T"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrderRequiresToken(t *testing.T) {
	r := buildTestRouter()
	if w := do(r, http.MethodPost, "/api/orders", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestCreateOrderRequiresBuyerRole(t *testing.T) {
	r := buildTestRouter()
	token := tokenFor(t, 5, user.RoleFarmer)
	if w := do(r, http.MethodPost, "/api/orders", token); w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestGetOrderRejectsMalformedID(t *testing.T) {
	r := buildTestRouter()
	token := tokenFor(t, 5, user.RoleBuyer)
	if w := do(r, http.MethodGet, "/api/orders/abc", token); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetOrderRejectsGarbageToken(t *testing.T) {
	r := buildTestRouter()
	if w := do(r, http.MethodGet, "/api/orders/1", "garbage"); w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
