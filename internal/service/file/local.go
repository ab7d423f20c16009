package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// LocalStorage 本地文件存储
type LocalStorage struct {
	basePath  string // 基础路径
	urlPrefix string // URL前缀，用于生成访问URL
}

// NewLocalStorage 创建本地存储服务
func NewLocalStorage(basePath, urlPrefix string) (*LocalStorage, error) {
	// 确保基础路径存在
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, &ConfigError{Backend: string(StorageTypeLocal), Err: err}
	}

	return &LocalStorage{
		basePath:  basePath,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

// Save 保存文件到本地
// 先写同目录临时文件再 rename，目标位置上不会出现半写入的对象
func (s *LocalStorage) Save(ctx context.Context, req *SaveRequest) (string, error) {
	ext := filepath.Ext(req.FileName)
	if ext == "" {
		// 根据内容类型推断扩展名
		ext = extensionByContentType(req.ContentType)
	}
	relativePath := fmt.Sprintf("%s/%s%s", req.OwnerID, req.StorageKey, ext)
	fullPath := filepath.Join(s.basePath, relativePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", classifyLocalError(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return "", classifyLocalError(err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, req.Reader); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", classifyLocalError(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", classifyLocalError(err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", classifyLocalError(err)
	}

	return relativePath, nil
}

// Get 获取文件内容
func (s *LocalStorage) Get(ctx context.Context, location string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, location)
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete 删除文件，已不存在视为成功
func (s *LocalStorage) Delete(ctx context.Context, location string) error {
	fullPath := filepath.Join(s.basePath, location)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetURL 获取文件的访问URL
func (s *LocalStorage) GetURL(location string) string {
	return fmt.Sprintf("%s/%s", s.urlPrefix, location)
}

// Type 后端类型
func (s *LocalStorage) Type() StorageType {
	return StorageTypeLocal
}

// classifyLocalError 磁盘满和权限问题视为后端不可用，触发网关回退
func classifyLocalError(err error) error {
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, os.ErrPermission) {
		return &ConfigError{Backend: string(StorageTypeLocal), Err: err}
	}
	return &TransientError{Err: err}
}
