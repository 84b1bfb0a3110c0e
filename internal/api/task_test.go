package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"taskboard/internal/model"
	"taskboard/internal/store"

	"github.com/gin-gonic/gin"
)

type mockTaskStore struct {
	listTasksFunc  func(ctx context.Context) ([]model.Task, error)
	getTaskFunc    func(ctx context.Context, id uint) (*model.Task, error)
	createTaskFunc func(ctx context.Context, task *model.Task) error
	updateTaskFunc func(ctx context.Context, id uint, updates map[string]interface{}) error
	deleteTaskFunc func(ctx context.Context, id uint) error
	createCalls    int
}

func (m *mockTaskStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	return m.listTasksFunc(ctx)
}

func (m *mockTaskStore) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	return m.getTaskFunc(ctx, id)
}

func (m *mockTaskStore) CreateTask(ctx context.Context, task *model.Task) error {
	m.createCalls++
	return m.createTaskFunc(ctx, task)
}

func (m *mockTaskStore) UpdateTask(ctx context.Context, id uint, updates map[string]interface{}) error {
	return m.updateTaskFunc(ctx, id, updates)
}

func (m *mockTaskStore) DeleteTask(ctx context.Context, id uint) error {
	return m.deleteTaskFunc(ctx, id)
}

func existingUsers(ids ...uint) *mockUserStore {
	set := map[uint]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return &mockUserStore{
		userExistsFunc: func(ctx context.Context, id uint) (bool, error) {
			return set[id], nil
		},
	}
}

func TestCreateTask_Normal(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var created *model.Task
	tasks := &mockTaskStore{
		createTaskFunc: func(ctx context.Context, task *model.Task) error {
			task.ID = 1
			created = task
			return nil
		},
	}
	s := newTestServer(existingUsers(7), tasks, nil)

	r := gin.New()
	r.POST("/tasks/", s.handleCreateTask)

	w := doJSON(t, r, http.MethodPost, "/tasks/", map[string]interface{}{
		"user_id": 7,
		"title":   "write report",
		"done":    false,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if tasks.createCalls != 1 {
		t.Fatalf("expected create task to be called")
	}
	if created.UserID != 7 || created.Title != "write report" || created.Done {
		t.Fatalf("unexpected task: %+v", created)
	}
}

func TestCreateTask_MissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tasks := &mockTaskStore{
		createTaskFunc: func(ctx context.Context, task *model.Task) error { return nil },
	}
	s := newTestServer(existingUsers(7), tasks, nil)

	r := gin.New()
	r.POST("/tasks/", s.handleCreateTask)

	cases := []map[string]interface{}{
		{"title": "x", "done": false},
		{"user_id": 7, "done": false},
		{"user_id": 7, "title": "x"},
	}
	for _, body := range cases {
		w := doJSON(t, r, http.MethodPost, "/tasks/", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %v: expected 400, got %d", body, w.Code)
		}
	}
	if tasks.createCalls != 0 {
		t.Fatalf("expected no create call")
	}
}

func TestCreateTask_UnknownOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tasks := &mockTaskStore{
		createTaskFunc: func(ctx context.Context, task *model.Task) error { return nil },
	}
	s := newTestServer(existingUsers(), tasks, nil)

	r := gin.New()
	r.POST("/tasks/", s.handleCreateTask)

	w := doJSON(t, r, http.MethodPost, "/tasks/", map[string]interface{}{
		"user_id": 42,
		"title":   "orphan",
		"done":    false,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if tasks.createCalls != 0 {
		t.Fatalf("expected no create call for unknown owner")
	}
}

func TestListTasks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tasks := &mockTaskStore{
		listTasksFunc: func(ctx context.Context) ([]model.Task, error) {
			return []model.Task{
				{ID: 1, UserID: 7, Title: "a", Done: false},
				{ID: 2, UserID: 8, Title: "b", Done: true},
			}, nil
		},
	}
	s := newTestServer(nil, tasks, nil)

	r := gin.New()
	r.GET("/tasks/", s.handleListTasks)

	w := doJSON(t, r, http.MethodGet, "/tasks/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Tasks []taskResponse `json:"tasks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(resp.Tasks))
	}
	if resp.Tasks[1].UserID != 8 || !resp.Tasks[1].Done {
		t.Fatalf("unexpected task payload: %+v", resp.Tasks[1])
	}
}

func TestUpdateTask_OnlyDone(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var captured map[string]interface{}
	tasks := &mockTaskStore{
		updateTaskFunc: func(ctx context.Context, id uint, updates map[string]interface{}) error {
			captured = updates
			return nil
		},
		getTaskFunc: func(ctx context.Context, id uint) (*model.Task, error) {
			return &model.Task{ID: 3, UserID: 7, Title: "unchanged", Done: true}, nil
		},
	}
	s := newTestServer(nil, tasks, nil)

	r := gin.New()
	r.PATCH("/tasks/:id", s.handleUpdateTask)

	w := doJSON(t, r, http.MethodPatch, "/tasks/3", map[string]interface{}{"done": true})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(captured) != 1 || captured["done"] != true {
		t.Fatalf("expected only done to change, got %v", captured)
	}

	var resp taskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "unchanged" || resp.UserID != 7 {
		t.Fatalf("other fields changed: %+v", resp)
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tasks := &mockTaskStore{
		updateTaskFunc: func(ctx context.Context, id uint, updates map[string]interface{}) error {
			return store.ErrNotFound
		},
	}
	s := newTestServer(nil, tasks, nil)

	r := gin.New()
	r.PATCH("/tasks/:id", s.handleUpdateTask)

	w := doJSON(t, r, http.MethodPatch, "/tasks/99", map[string]interface{}{"done": true})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteTask_Idempotence(t *testing.T) {
	gin.SetMode(gin.TestMode)

	existing := map[uint]bool{3: true}
	tasks := &mockTaskStore{
		deleteTaskFunc: func(ctx context.Context, id uint) error {
			if !existing[id] {
				return store.ErrNotFound
			}
			delete(existing, id)
			return nil
		},
	}
	s := newTestServer(nil, tasks, nil)

	r := gin.New()
	r.DELETE("/tasks/:id", s.handleDeleteTask)

	w := doJSON(t, r, http.MethodDelete, "/tasks/3", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/tasks/3", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}
