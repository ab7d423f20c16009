package repository

import (
	"time"

	"github.com/BailinYe/resume-modifier/internal/model"
	"gorm.io/gorm"
)

// fileRepositoryImpl 文件元数据仓库
type fileRepositoryImpl struct {
	db *gorm.DB
}

// NewFileRepository 创建文件仓库
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepositoryImpl{db: db}
}

// Create 创建文件记录
func (r *fileRepositoryImpl) Create(record *model.FileRecord) error {
	return r.db.Create(record).Error
}

// GetByID 根据ID获取文件记录
func (r *fileRepositoryImpl) GetByID(id string) (*model.FileRecord, error) {
	var record model.FileRecord
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByOwnerAndHash 获取去重组内全部记录
func (r *fileRepositoryImpl) ListByOwnerAndHash(ownerID, hash string) ([]*model.FileRecord, error) {
	var records []*model.FileRecord
	err := r.db.Where("owner_id = ? AND content_hash = ?", ownerID, hash).
		Order("duplicate_seq ASC").
		Find(&records).Error
	return records, err
}

// ListByOwner 列出 owner 的文件（不含软删除）
func (r *fileRepositoryImpl) ListByOwner(ownerID string, offset, limit int) ([]*model.FileRecord, int64, error) {
	var records []*model.FileRecord
	var total int64

	query := r.db.Model(&model.FileRecord{}).
		Where("owner_id = ? AND deleted_at IS NULL", ownerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&records).Error
	return records, total, err
}

// Update 更新文件记录
func (r *fileRepositoryImpl) Update(record *model.FileRecord) error {
	return r.db.Save(record).Error
}

// UpdateFields 更新指定字段
func (r *fileRepositoryImpl) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&model.FileRecord{}).Where("id = ?", id).Updates(fields).Error
}

// SoftDelete 软删除
func (r *fileRepositoryImpl) SoftDelete(id, deletedBy string) error {
	now := time.Now()
	return r.db.Model(&model.FileRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": &now,
		"deleted_by": deletedBy,
	}).Error
}

// Delete 物理删除文件记录
func (r *fileRepositoryImpl) Delete(id string) error {
	return r.db.Delete(&model.FileRecord{}, "id = ?", id).Error
}
