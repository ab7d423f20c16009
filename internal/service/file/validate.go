package file

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/BailinYe/resume-modifier/internal/config"
)

// Validator 上传前的结构校验
type Validator struct {
	maxSize      int64
	allowedTypes map[string]bool
	allowedExts  map[string]bool
}

// NewValidator 从上传配置创建校验器
func NewValidator(cfg *config.UploadConfig) *Validator {
	types := make(map[string]bool, len(cfg.AllowedTypes))
	exts := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		types[t] = true
		exts[extensionByContentType(t)] = true
	}
	return &Validator{
		maxSize:      cfg.MaxSizeBytes,
		allowedTypes: types,
		allowedExts:  exts,
	}
}

// Validate 校验文件名、大小与内容类型
// 内容类型从前 512 字节嗅探，声明的 Content-Type 不可信；
// docx 等 zip 容器嗅探不出精确类型，此时回退到扩展名判断
func (v *Validator) Validate(fileName string, size int64, head []byte) error {
	if fileName == "" {
		return &ValidationError{Reason: "file name is required"}
	}
	if size <= 0 {
		return &ValidationError{Reason: "file is empty"}
	}
	if size > v.maxSize {
		return &ValidationError{Reason: fmt.Sprintf("file too large: %d bytes (max %d)", size, v.maxSize)}
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !v.allowedExts[ext] {
		return &ValidationError{Reason: fmt.Sprintf("file extension %q not allowed", ext)}
	}

	detected := http.DetectContentType(head)
	// DetectContentType 带 charset 后缀，如 text/plain; charset=utf-8
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = strings.TrimSpace(detected[:i])
	}
	if v.allowedTypes[detected] {
		return nil
	}
	switch detected {
	case "application/zip", "application/octet-stream":
		// 容器格式，扩展名已通过白名单
		return nil
	}
	return &ValidationError{Reason: fmt.Sprintf("content type %q not allowed", detected)}
}
