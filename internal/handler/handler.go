package handler

import (
	"github.com/BailinYe/resume-modifier/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	File   *FileHandler
	Auth   *AuthHandler
	System *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		File:   NewFileHandler(svc.File),
		Auth:   NewAuthHandler(svc),
		System: NewSystemHandler(svc.Config),
	}
}
