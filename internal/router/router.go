package router

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kamino-labs/kamino-portal/internal/client"
	"github.com/kamino-labs/kamino-portal/internal/config"
	"github.com/kamino-labs/kamino-portal/internal/handlers"
	"github.com/kamino-labs/kamino-portal/internal/middleware"
	"github.com/kamino-labs/kamino-portal/internal/services"
	"github.com/kamino-labs/kamino-portal/internal/wizard"
)

// 向导会话过期时间，超时未操作的会话由后台清理
const wizardSessionTTL = 2 * time.Hour

func Setup(db *gorm.DB, cfg *config.Config) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	logSvc := services.NewOperationLogService(db)

	r.Use(
		gin.Recovery(),
		gin.Logger(),
		middleware.RequestID(),
		middleware.CORS(),
		// WebSocket 推送不能压缩
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws/"})),
		middleware.OperationAudit(logSvc),
	)

	// Health endpoints：liveness 与 readiness
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ready": true})
	})

	// 统一的后端客户端与事件中心实例
	backendClient := client.New(cfg.Backend.URL, cfg.Backend.Token,
		time.Duration(cfg.Backend.Timeout)*time.Second)
	hub := handlers.NewEventHub()
	wizardMgr := wizard.NewManager(wizardSessionTTL)

	// /api/v1
	api := r.Group("/api/v1")

	// Auth 仅开放登录与登出，其余走受保护分组
	auth := api.Group("/auth")
	{
		authHandler := handlers.NewAuthHandler(backendClient)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		// /me 必须带 Auth
		auth.GET("/me", middleware.AuthRequired(cfg.JWT.Secret), authHandler.Me)
	}

	// 受保护的业务路由
	protected := api.Group("")
	protected.Use(middleware.AuthRequired(cfg.JWT.Secret))
	{
		// 仪表盘
		dashboardHandler := handlers.NewDashboardHandler(backendClient)
		protected.GET("/dashboard", dashboardHandler.GetStats)

		// 模板：浏览对所有登录用户开放，变更需要创建者权限
		templateHandler := handlers.NewTemplateHandler(backendClient, hub, int(cfg.Upload.MaxSizeMB))
		templates := protected.Group("/templates")
		{
			templates.GET("", templateHandler.GetTemplates)
			templates.GET("/image/*path", templateHandler.GetImage)

			creator := templates.Group("")
			creator.Use(middleware.CreatorRequired())
			{
				creator.GET("/unpublished", templateHandler.GetUnpublishedTemplates)
				creator.POST("/image", templateHandler.UploadImage)
				creator.PUT("/:name", templateHandler.EditTemplate)
				creator.PATCH("/:name/visibility", templateHandler.SetVisibility)
				creator.DELETE("/:name", templateHandler.DeleteTemplate)
			}
		}

		// Pod：自助部署对所有登录用户开放，批量删除需要管理员
		podHandler := handlers.NewPodHandler(backendClient, hub)
		pods := protected.Group("/pods")
		{
			pods.GET("", podHandler.GetPods)
			pods.POST("/deploy", podHandler.DeployPod)
			pods.DELETE("/:name", podHandler.DeletePod)
			pods.POST("/bulk-delete", middleware.AdminRequired(), podHandler.BulkDeletePods)
		}

		// 向导会话
		wizardHandler := handlers.NewWizardHandler(wizardMgr, backendClient, hub)
		wizards := protected.Group("/wizards")
		{
			wizards.POST("", wizardHandler.CreateSession)
			wizards.GET("/:id", wizardHandler.GetSession)
			wizards.POST("/:id/next", wizardHandler.NextStep)
			wizards.POST("/:id/prev", wizardHandler.PrevStep)
			wizards.POST("/:id/goto", wizardHandler.GotoStep)
			wizards.POST("/:id/reset", wizardHandler.ResetSession)
			wizards.POST("/:id/submit", wizardHandler.Submit)
			wizards.DELETE("/:id", wizardHandler.DeleteSession)
		}

		// 管理员路由
		admin := protected.Group("")
		admin.Use(middleware.AdminRequired())
		{
			// 用户管理
			userHandler := handlers.NewUserHandler(backendClient, hub)
			users := admin.Group("/users")
			{
				users.GET("", userHandler.GetUsers)
				users.POST("", userHandler.CreateUsers)
				users.POST("/bulk-delete", userHandler.BulkDeleteUsers)
				users.PATCH("/:name/enabled", userHandler.SetUserEnabled)
			}

			// 用户组管理
			groupHandler := handlers.NewGroupHandler(backendClient, hub)
			groups := admin.Group("/groups")
			{
				groups.GET("", groupHandler.GetGroups)
				groups.POST("", groupHandler.CreateGroups)
				groups.POST("/bulk-delete", groupHandler.BulkDeleteGroups)
				groups.POST("/add-users", groupHandler.AddUsers)
				groups.POST("/remove-users", groupHandler.RemoveUsers)
				groups.PUT("/:name/rename", groupHandler.RenameGroup)
			}

			// 虚拟机管理
			vmHandler := handlers.NewVMHandler(backendClient, hub, cfg.Proxmox.ConsoleURL)
			vms := admin.Group("/vms")
			{
				vms.GET("", vmHandler.GetVMs)
				vms.POST("/:node/:vmid/start", vmHandler.StartVM)
				vms.POST("/:node/:vmid/shutdown", vmHandler.ShutdownVM)
				vms.POST("/:node/:vmid/reboot", vmHandler.RebootVM)
			}

			// 操作审计
			auditHandler := handlers.NewAuditHandler(logSvc)
			admin.GET("/audit/logs", auditHandler.GetOperationLogs)
		}
	}

	// WebSocket 事件推送
	ws := r.Group("/ws")
	ws.Use(middleware.AuthRequired(cfg.JWT.Secret))
	{
		ws.GET("/events", hub.HandleEvents)
	}

	return r
}
