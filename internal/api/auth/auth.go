package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/pkg/metrics"
	"taskboard/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// badCredentialsMessage 对"用户不存在"和"密码错误"返回完全相同的文案，
// 避免暴露哪个环节失败（用户名枚举）。
const badCredentialsMessage = "Bad username or password"

// UserFinder 是登录所需的最小用户查询接口。
type UserFinder interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// LoginLimiter 按 key 限制登录尝试频率。
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Handler 提供登录接口。
type Handler struct {
	users     UserFinder
	limiter   LoginLimiter
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *slog.Logger
}

// NewHandler 创建 Auth Handler。limiter 可以为 nil（禁用限流）。
func NewHandler(users UserFinder, limiter LoginLimiter, jwtSecret string, tokenTTL time.Duration, logger *slog.Logger) *Handler {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &Handler{
		users:     users,
		limiter:   limiter,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Login 校验用户名密码并签发访问令牌。
//
// POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.Request.Context(), "login:"+c.ClientIP())
		if err != nil {
			if h.logger != nil {
				h.logger.Warn("login rate limit check failed", slog.String("error", err.Error()))
			}
		} else if !allowed {
			metrics.LoginThrottledTotal.Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "too many login attempts"})
			return
		}
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.users.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			if h.logger != nil {
				h.logger.Error("query user failed", slog.String("error", err.Error()))
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "query user failed"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": badCredentialsMessage})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": badCredentialsMessage})
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("sign token failed", slog.String("error", err.Error()))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "sign token failed"})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token})
}

// issueToken 签发 HS256 令牌，subject 为用户 ID 的字符串形式。
func (h *Handler) issueToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}
