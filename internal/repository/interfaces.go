// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import "github.com/BailinYe/resume-modifier/internal/model"

// ========== FileRepository 接口 ==========

// FileRepository 文件元数据访问接口
// 接口定义使 Service 层可以轻松 mock 进行单元测试
type FileRepository interface {
	// Create 插入记录，(owner_id, content_hash, duplicate_seq) 冲突时
	// 返回可被 gorm.ErrDuplicatedKey 识别的错误
	Create(record *model.FileRecord) error
	GetByID(id string) (*model.FileRecord, error)
	// ListByOwnerAndHash 返回 owner 去重组内全部记录，按 duplicate_seq 升序
	ListByOwnerAndHash(ownerID, hash string) ([]*model.FileRecord, error)
	// ListByOwner 返回 owner 未软删除的记录
	ListByOwner(ownerID string, offset, limit int) ([]*model.FileRecord, int64, error)
	Update(record *model.FileRecord) error
	UpdateFields(id string, fields map[string]interface{}) error
	SoftDelete(id, deletedBy string) error
	Delete(id string) error
}

// 确保 fileRepositoryImpl 实现了接口
var _ FileRepository = (*fileRepositoryImpl)(nil)
