package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/model"
	"taskboard/internal/store"

	"github.com/gin-gonic/gin"
)

type mockResolver struct {
	users map[uint]*model.User
}

func (m *mockResolver) GetUserWithRole(ctx context.Context, id uint) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return user, nil
}

func roleOf(name string) *model.Role {
	return &model.Role{ID: 1, Name: name}
}

func guardedRouter(callerID uint, guard gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/users/:id", func(c *gin.Context) { SetCallerID(c, callerID) }, guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequiresUser_SelfAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := guardedRouter(7, RequiresUser())
	if w := get(r, "/users/7"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequiresUser_OtherForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := guardedRouter(7, RequiresUser())
	// 目标用户存在与否无关紧要，守卫只比较 ID。
	if w := get(r, "/users/8"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if w := get(r, "/users/123456"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequiresUser_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := guardedRouter(7, RequiresUser())
	if w := get(r, "/users/abc"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRequiresRole_Match(t *testing.T) {
	gin.SetMode(gin.TestMode)

	resolver := &mockResolver{users: map[uint]*model.User{
		7: {ID: 7, Username: "alice", Role: roleOf("admin")},
	}}
	r := guardedRouter(7, RequiresRole(resolver, "admin"))
	if w := get(r, "/users/7"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequiresRole_Mismatch(t *testing.T) {
	gin.SetMode(gin.TestMode)

	resolver := &mockResolver{users: map[uint]*model.User{
		7: {ID: 7, Username: "alice", Role: roleOf("viewer")},
	}}
	r := guardedRouter(7, RequiresRole(resolver, "admin"))
	if w := get(r, "/users/7"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequiresRole_NoRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	resolver := &mockResolver{users: map[uint]*model.User{
		7: {ID: 7, Username: "alice"},
	}}
	r := guardedRouter(7, RequiresRole(resolver, "admin"))
	if w := get(r, "/users/7"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user without role, got %d", w.Code)
	}
}

func TestRequiresRole_UnknownCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)

	resolver := &mockResolver{users: map[uint]*model.User{}}
	r := guardedRouter(99, RequiresRole(resolver, "admin"))
	if w := get(r, "/users/99"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
