package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/infrastructure/auth"
)

func authChain(t *testing.T, minRole domain.Role) (http.Handler, *auth.JWTManager, *bool) {
	t.Helper()
	manager := auth.NewJWTManager("test-secret", time.Hour)
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r.Context())
		if !ok || claims.Subject == "" {
			t.Fatalf("expected claims on the context")
		}
		called = true
	})
	return AuthMiddleware(manager)(RequireRole(minRole)(next)), manager, &called
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	h, _, called := authChain(t, domain.RoleViewer)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil))

	if rr.Code != http.StatusUnauthorized || *called {
		t.Fatalf("expected 401 without calling next, got %d", rr.Code)
	}
}

func TestAuthMiddleware_RejectsMalformedHeader(t *testing.T) {
	h, _, _ := authChain(t, domain.RoleViewer)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	req.Header.Set("Authorization", "Token abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_RoleChecks(t *testing.T) {
	tests := []struct {
		name    string
		role    domain.Role
		minRole domain.Role
		want    int
	}{
		{"viewer reads", domain.RoleViewer, domain.RoleViewer, http.StatusOK},
		{"viewer cannot write", domain.RoleViewer, domain.RoleOperator, http.StatusForbidden},
		{"operator writes", domain.RoleOperator, domain.RoleOperator, http.StatusOK},
		{"operator cannot remove", domain.RoleOperator, domain.RoleAdmin, http.StatusForbidden},
		{"admin removes", domain.RoleAdmin, domain.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h, manager, called := authChain(t, tt.minRole)
			token, err := manager.Generate("alice", tt.role)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
			if *called != (tt.want == http.StatusOK) {
				t.Fatalf("unexpected next invocation: %v", *called)
			}
		})
	}
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	h := RequireRole(domain.RoleViewer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next should not run")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
