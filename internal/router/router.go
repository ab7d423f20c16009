package router

import (
	"github.com/gin-gonic/gin"

	"github.com/BailinYe/resume-modifier/internal/handler"
	"github.com/BailinYe/resume-modifier/internal/middleware"
	"github.com/BailinYe/resume-modifier/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, svc *service.Services) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", h.System.Health)

	// API v1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(svc))
	{
		// Auth 认证
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/refresh", h.Auth.RefreshToken)
			authGroup.POST("/logout", h.Auth.Logout)
			authGroup.GET("/me", middleware.RequireAuth(svc), h.Auth.GetCurrentUser)
			authGroup.POST("/change-password", middleware.RequireAuth(svc), h.Auth.ChangePassword)
		}

		// File 文件摄取与生命周期
		files := v1.Group("/files")
		{
			files.POST("/upload", h.File.UploadFile)
			files.GET("", h.File.ListFiles)
			files.GET("/:id", h.File.GetFile)
			files.GET("/:id/download", h.File.DownloadFile)
			files.GET("/:id/url", h.File.GetFileURL)
			files.PUT("/:id/category", h.File.UpdateFileCategory)
			files.DELETE("/:id", h.File.DeleteFile)
			files.DELETE("/:id/permanent", h.File.PurgeFile)
		}
	}

	return r
}
