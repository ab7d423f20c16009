package file

import (
	"context"
	"io"
)

// Storage 单一后端的文件存储接口
type Storage interface {
	// Save 保存文件，返回存储位置
	// 写入必须是原子的：位置上要么可见完整对象，要么什么都没有
	Save(ctx context.Context, req *SaveRequest) (string, error)
	// Get 获取文件内容
	Get(ctx context.Context, location string) (io.ReadCloser, error)
	// Delete 删除文件，位置不存在视为成功
	Delete(ctx context.Context, location string) error
	// GetURL 获取文件的访问URL
	GetURL(location string) string
	// Type 后端类型
	Type() StorageType
}

// SaveRequest 保存文件请求
type SaveRequest struct {
	// StorageKey 全局唯一存储键，由编排器生成
	StorageKey  string
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
	OwnerID     string
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeMinIO StorageType = "minio"
)

// extensionByContentType 根据内容类型返回扩展名
func extensionByContentType(contentType string) string {
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "text/plain", "text/csv":
		return ".txt"
	case "text/markdown":
		return ".md"
	case "text/html":
		return ".html"
	case "image/png":
		return ".png"
	default:
		return ".bin"
	}
}
