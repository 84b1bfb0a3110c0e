package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RoleID   *uint  `json:"role_id"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type userSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type userTaskResponse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type userDetailResponse struct {
	ID       uint               `json:"id"`
	Username string             `json:"username"`
	Tasks    []userTaskResponse `json:"tasks"`
}

// handleListUsers 返回全部用户。
//
// GET /users/
func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.ListUsers(c.Request.Context())
	if err != nil {
		s.logger.Error("list users failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "list users failed"})
		return
	}

	summaries := make([]userSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, userSummary{ID: u.ID, Username: u.Username})
	}
	c.JSON(http.StatusOK, gin.H{"users": summaries})
}

// handleCreateUser 创建新用户。
//
// POST /users/
func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username is required"})
		return
	}

	user := model.User{
		Username: strings.TrimSpace(req.Username),
		RoleID:   req.RoleID,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "hash password failed"})
			return
		}
		user.Password = string(hash)
	}

	if err := s.users.CreateUser(c.Request.Context(), &user); err != nil {
		s.logger.Error("create user failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create user failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created!"})
}

// handleGetUser 返回用户及其任务列表。
//
// GET /users/:id
func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	user, err := s.users.GetUserWithTasks(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		s.logger.Error("get user failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "get user failed"})
		return
	}

	tasks := make([]userTaskResponse, 0, len(user.Tasks))
	for _, t := range user.Tasks {
		tasks = append(tasks, userTaskResponse{ID: t.ID, Title: t.Title, Done: t.Done})
	}
	c.JSON(http.StatusOK, userDetailResponse{
		ID:       user.ID,
		Username: user.Username,
		Tasks:    tasks,
	})
}

// handleUpdateUser 部分更新用户。
//
// 只有请求体里出现且在允许列表内的字段会被修改，其余键一律忽略。
// role_id 不在允许列表内：该路由受"本人"守卫保护，
// 若允许修改角色，任何用户都能把自己提升为 admin。
//
// PATCH /users/:id
func (s *Server) handleUpdateUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid username"})
			return
		}
		updates["username"] = username
	}
	if req.Password != nil {
		if *req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid password"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "hash password failed"})
			return
		}
		updates["password"] = string(hash)
	}
	if err := s.users.UpdateUser(c.Request.Context(), id, updates); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		s.logger.Error("update user failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "update user failed"})
		return
	}

	user, err := s.users.GetUserWithTasks(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("reload user failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "reload user failed"})
		return
	}
	c.JSON(http.StatusOK, userSummary{ID: user.ID, Username: user.Username})
}

// handleDeleteUser 删除用户及其任务。
//
// DELETE /users/:id
func (s *Server) handleDeleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.users.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		s.logger.Error("delete user failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "delete user failed"})
		return
	}

	c.Status(http.StatusNoContent)
}

// idParam 解析路由中的 :id。失败时已写入 400 响应。
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
