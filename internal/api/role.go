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

type createRoleRequest struct {
	Name string `json:"name"`
}

type updateRoleRequest struct {
	Name *string `json:"name"`
}

type roleResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// handleListRoles 返回全部角色。
//
// GET /roles/
func (s *Server) handleListRoles(c *gin.Context) {
	roles, err := s.roles.ListRoles(c.Request.Context())
	if err != nil {
		s.logger.Error("list roles failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "list roles failed"})
		return
	}

	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleResponse{ID: r.ID, Name: r.Name})
	}
	c.JSON(http.StatusOK, gin.H{"roles": out})
}

// handleCreateRole 创建新角色。
//
// POST /roles/
func (s *Server) handleCreateRole(c *gin.Context) {
	var req createRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name is required"})
		return
	}

	role := model.Role{Name: strings.TrimSpace(req.Name)}
	if err := s.roles.CreateRole(c.Request.Context(), &role); err != nil {
		s.logger.Error("create role failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create role failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Role created!"})
}

// handleGetRole 返回单个角色。
//
// GET /roles/:id
func (s *Server) handleGetRole(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	role, err := s.roles.GetRole(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "role not found"})
			return
		}
		s.logger.Error("get role failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "get role failed"})
		return
	}

	c.JSON(http.StatusOK, roleResponse{ID: role.ID, Name: role.Name})
}

// handleUpdateRole 部分更新角色。
//
// PATCH /roles/:id
func (s *Server) handleUpdateRole(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid name"})
			return
		}
		updates["name"] = name
	}

	if err := s.roles.UpdateRole(c.Request.Context(), id, updates); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "role not found"})
			return
		}
		s.logger.Error("update role failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "update role failed"})
		return
	}

	role, err := s.roles.GetRole(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("reload role failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "reload role failed"})
		return
	}
	c.JSON(http.StatusOK, roleResponse{ID: role.ID, Name: role.Name})
}

// handleDeleteRole 删除角色。
//
// DELETE /roles/:id
func (s *Server) handleDeleteRole(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.roles.DeleteRole(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "role not found"})
			return
		}
		s.logger.Error("delete role failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "delete role failed"})
		return
	}

	c.Status(http.StatusNoContent)
}
