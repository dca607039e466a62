// README: Tests for JWT auth and role middleware.
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"agrilink/internal/auth"
	"agrilink/internal/http/middleware"
	"agrilink/internal/modules/user"
)

// stubParser is a test double for middleware.TokenParser.
type stubParser struct {
	claims *auth.Claims
	err    error
}

func (s *stubParser) Parse(_ string) (*auth.Claims, error) {
	return s.claims, s.err
}

func newTestRouter(parser middleware.TokenParser, roles ...user.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{middleware.AuthRequired(parser)}
	if len(roles) > 0 {
		handlers = append(handlers, middleware.RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		claims, _ := middleware.ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "type": claims.Role})
	})
	r.GET("/test", handlers...)
	return r
}

func request(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func farmerClaims() *auth.Claims {
	return &auth.Claims{UserID: 7, Email: "a@example.com", Role: user.RoleFarmer, Name: "Abebe"}
}

func TestAuthRequired_MissingHeader(t *testing.T) {
	r := newTestRouter(&stubParser{claims: farmerClaims()})
	if w := request(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthRequired_WrongScheme(t *testing.T) {
	r := newTestRouter(&stubParser{claims: farmerClaims()})
	if w := request(r, "Token abc"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthRequired_InvalidToken(t *testing.T) {
	r := newTestRouter(&stubParser{err: auth.ErrInvalidToken})
	if w := request(r, "Bearer bad"); w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAuthRequired_ValidToken(t *testing.T) {
	r := newTestRouter(&stubParser{claims: farmerClaims()})
	w := request(r, "Bearer good")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRoleRequired_Allowed(t *testing.T) {
	r := newTestRouter(&stubParser{claims: farmerClaims()}, user.RoleFarmer, user.RoleAdmin)
	if w := request(r, "Bearer good"); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRoleRequired_Denied(t *testing.T) {
	r := newTestRouter(&stubParser{claims: farmerClaims()}, user.RoleAdmin)
	if w := request(r, "Bearer good"); w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
