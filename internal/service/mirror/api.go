// Package mirror 将已入库的文件镜像到外部文档协作服务
// 镜像整体是尽力而为的：任何失败都以警告形式上报，从不影响摄取结果
package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DocumentAPI 外部文档服务暴露给流水线的最小操作面
// 认证与令牌刷新由外部协作方负责，这里只消费注入的令牌源
type DocumentAPI interface {
	// Upload 上传文件到指定父目录，parentID 为空表示根目录，返回远端文件ID
	Upload(ctx context.Context, name, parentID, contentType string, r io.Reader) (string, error)
	// Convert 将远端文件转换为服务原生可编辑文档，返回文档ID
	Convert(ctx context.Context, fileID string) (string, error)
	// Share 设置共享权限
	Share(ctx context.Context, id, recipient, role string) error
	// EnsureFolder 在父目录下查找或创建子目录，返回目录ID
	EnsureFolder(ctx context.Context, parentID, name string) (string, error)
}

// PlacementError 配额或权限类错误，放置算法据此切换下一策略
type PlacementError struct {
	Code string
	Err  error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("placement rejected (%s): %v", e.Code, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }

// TransientError 网络或服务端瞬时错误，同一策略内重试
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient mirror error: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsPlacementError 判断是否放置类错误
func IsPlacementError(err error) bool {
	var pe *PlacementError
	return errors.As(err, &pe)
}

// IsTransientError 判断是否瞬时错误
func IsTransientError(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
