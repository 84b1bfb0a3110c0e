package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/store"

	"github.com/gin-gonic/gin"
)

type createTaskRequest struct {
	UserID *uint   `json:"user_id"`
	Title  *string `json:"title"`
	Done   *bool   `json:"done"`
}

type updateTaskRequest struct {
	UserID *uint   `json:"user_id"`
	Title  *string `json:"title"`
	Done   *bool   `json:"done"`
}

type taskResponse struct {
	ID     uint   `json:"id"`
	UserID uint   `json:"user_id"`
	Title  string `json:"title"`
	Done   bool   `json:"done"`
}

// handleListTasks 返回全部任务。
//
// GET /tasks/
func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.ListTasks(c.Request.Context())
	if err != nil {
		s.logger.Error("list tasks failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "list tasks failed"})
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse{ID: t.ID, UserID: t.UserID, Title: t.Title, Done: t.Done})
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

// handleCreateTask 创建任务。
//
// user_id、title、done 三个字段都必填；user_id 必须指向已存在的用户，
// 否则返回 400 而不是把外键错误抛给调用方。
//
// POST /tasks/
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.UserID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "user_id is required"})
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title is required"})
		return
	}
	if req.Done == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "done is required"})
		return
	}

	exists, err := s.users.UserExists(c.Request.Context(), *req.UserID)
	if err != nil {
		s.logger.Error("check user failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "check user failed"})
		return
	}
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"message": "user not found"})
		return
	}

	task := model.Task{
		UserID: *req.UserID,
		Title:  strings.TrimSpace(*req.Title),
		Done:   *req.Done,
	}
	if err := s.tasks.CreateTask(c.Request.Context(), &task); err != nil {
		s.logger.Error("create task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create task failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Task created!"})
}

// handleGetTask 返回单个任务。
//
// GET /tasks/:id
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	task, err := s.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "task not found"})
			return
		}
		s.logger.Error("get task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "get task failed"})
		return
	}

	c.JSON(http.StatusOK, taskResponse{ID: task.ID, UserID: task.UserID, Title: task.Title, Done: task.Done})
}

// handleUpdateTask 部分更新任务。
//
// PATCH /tasks/:id
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.UserID != nil {
		updates["user_id"] = *req.UserID
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid title"})
			return
		}
		updates["title"] = title
	}
	if req.Done != nil {
		updates["done"] = *req.Done
	}

	if err := s.tasks.UpdateTask(c.Request.Context(), id, updates); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "task not found"})
			return
		}
		s.logger.Error("update task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "update task failed"})
		return
	}

	task, err := s.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("reload task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "reload task failed"})
		return
	}
	c.JSON(http.StatusOK, taskResponse{ID: task.ID, UserID: task.UserID, Title: task.Title, Done: task.Done})
}

// handleDeleteTask 删除任务。
//
// DELETE /tasks/:id
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.tasks.DeleteTask(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "task not found"})
			return
		}
		s.logger.Error("delete task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "delete task failed"})
		return
	}

	c.Status(http.StatusNoContent)
}
