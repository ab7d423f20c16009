package file

import (
	"errors"
	"fmt"
)

// ========== 警告（非致命） ==========

// 警告所属阶段
const (
	WarnStageDedup      = "dedup"
	WarnStageProcessing = "processing"
	WarnStageMirror     = "mirror"
	WarnStageThumbnail  = "thumbnail"
)

// Warning 非致命降级信息，附加在成功结果上
type Warning struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// NewWarning 创建警告
func NewWarning(stage, format string, args ...interface{}) Warning {
	return Warning{Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// ========== 致命错误 ==========

// ValidationError 校验失败，发生在任何副作用之前
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ConfigError 后端不可达或配置错误，不可重试
// 存储网关在首选后端返回该错误时才会切换到回退后端
type ConfigError struct {
	Backend string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("storage backend %s misconfigured or unavailable: %v", e.Backend, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TransientError 瞬时错误，可由调用方决定重试
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient storage error: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }

// StorageError 初始写入失败，此时尚未创建元数据，无需补偿
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storage write failed: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError 元数据提交失败
// Compensated 表明已写入的对象是否被补偿删除；为 false 时 Location 指向遗留孤儿
type PersistenceError struct {
	Err         error
	Compensated bool
	Location    string
}

func (e *PersistenceError) Error() string {
	if e.Compensated {
		return fmt.Sprintf("metadata persistence failed (stored object removed): %v", e.Err)
	}
	return fmt.Sprintf("metadata persistence failed, orphaned object at %q: %v", e.Location, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsConfigError 判断是否后端配置错误
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsTransientError 判断是否瞬时错误
func IsTransientError(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
