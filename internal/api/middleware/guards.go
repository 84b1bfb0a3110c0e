package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"taskboard/internal/model"
	"taskboard/internal/store"

	"github.com/gin-gonic/gin"
)

// UserResolver 是角色守卫所需的最小用户查询接口。
type UserResolver interface {
	GetUserWithRole(ctx context.Context, id uint) (*model.User, error)
}

// RequiresRole 要求调用者的角色名等于 name。
//
// 每次请求都重新从数据库解析调用者及其角色，不做任何缓存。
// 调用者不存在返回 404；角色缺失或不匹配返回 403。
func RequiresRole(users UserResolver, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.GetUserWithRole(c.Request.Context(), CallerID(c))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "resolve user failed"})
			}
			c.Abort()
			return
		}

		if user.Role == nil || user.Role.Name != name {
			c.JSON(http.StatusForbidden, gin.H{"message": "user does not have access"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequiresUser 要求调用者就是路由 :id 指向的目标用户。
//
// 只比较 ID，不检查目标用户是否存在。
func RequiresUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
			c.Abort()
			return
		}

		if CallerID(c) != uint(target) {
			c.JSON(http.StatusForbidden, gin.H{"message": "user does not have access"})
			c.Abort()
			return
		}

		c.Next()
	}
}
