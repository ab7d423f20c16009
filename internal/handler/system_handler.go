package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BailinYe/resume-modifier/internal/config"
)

// SystemHandler 系统处理器
type SystemHandler struct {
	cfg       *config.Config
	startedAt time.Time
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(cfg *config.Config) *SystemHandler {
	return &SystemHandler{cfg: cfg, startedAt: time.Now()}
}

// Health 健康检查
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"app":     h.cfg.App.Name,
		"version": h.cfg.App.Version,
		"uptime":  time.Since(h.startedAt).String(),
	})
}
