package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"taskboard/internal/api/auth"
	"taskboard/internal/api/middleware"
	"taskboard/internal/config"
	"taskboard/internal/model"
	"taskboard/internal/pkg/metrics"
	"taskboard/internal/pkg/ratelimit"
	"taskboard/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有数据库连接、Redis 客户端、各资源的 Store 以及 Gin 路由引擎。
// 所有依赖在启动时显式构造并注入，不使用全局状态。
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
	rdb    *redis.Client
	router *gin.Engine
	auth   *auth.Handler
	users  store.UserStore
	tasks  store.TaskStore
	roles  store.RoleStore
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 连接 MySQL 数据库并执行自动迁移
// 2. 连接 Redis
// 3. 初始化 Gin 路由引擎并注册路由
//
// 参数:
//
//	ctx: 上下文
//	cfg: 配置对象
//	logger: 日志记录器
//
// 返回值:
//
//	*Server: 初始化完成的服务器实例
//	error: 初始化失败返回错误
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.Role{}, &model.User{}, &model.Task{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	metrics.InitMetrics()

	users := store.NewUserStore(db)
	limiter := ratelimit.New(rdb, "taskboard:ratelimit:", cfg.App.LoginRateLimit, cfg.App.LoginRateBurst)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())

	s := &Server{
		cfg:    cfg,
		logger: logger,
		db:     db,
		rdb:    rdb,
		router: r,
		auth:   auth.NewHandler(users, limiter, cfg.Security.JWTSecret, cfg.Security.TokenTTL, logger),
		users:  users,
		tasks:  store.NewTaskStore(db),
		roles:  store.NewRoleStore(db),
	}
	s.registerRoutes()
	return s, nil
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 关闭数据库与 Redis 连接。
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else if closeErr := sqlDB.Close(); closeErr != nil {
			if firstErr == nil {
				firstErr = closeErr
			}
		}
	}
	return firstErr
}

// registerRoutes 注册所有的 API 路由。
//
// 守卫绑定：
//   - /users/ 集合与 /roles 全部路由要求 admin 角色
//   - /users/:id 路由要求调用者即目标用户
//   - /tasks 路由仅要求有效令牌
func (s *Server) registerRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/healthz", s.handleHealthz)

	s.router.POST("/auth/login", s.auth.Login)

	authed := s.router.Group("/")
	authed.Use(middleware.Auth(s.cfg.Security.JWTSecret))

	adminOnly := middleware.RequiresRole(s.users, model.RoleAdmin)
	selfOnly := middleware.RequiresUser()

	users := authed.Group("/users")
	users.GET("/", adminOnly, s.handleListUsers)
	users.POST("/", adminOnly, s.handleCreateUser)
	users.GET("/:id", selfOnly, s.handleGetUser)
	users.PATCH("/:id", selfOnly, s.handleUpdateUser)
	users.DELETE("/:id", selfOnly, s.handleDeleteUser)

	tasks := authed.Group("/tasks")
	tasks.GET("/", s.handleListTasks)
	tasks.POST("/", s.handleCreateTask)
	tasks.GET("/:id", s.handleGetTask)
	tasks.PATCH("/:id", s.handleUpdateTask)
	tasks.DELETE("/:id", s.handleDeleteTask)

	roles := authed.Group("/roles")
	roles.Use(adminOnly)
	roles.GET("/", s.handleListRoles)
	roles.POST("/", s.handleCreateRole)
	roles.GET("/:id", s.handleGetRole)
	roles.PATCH("/:id", s.handleUpdateRole)
	roles.DELETE("/:id", s.handleDeleteRole)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
