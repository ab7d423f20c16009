package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// 处理状态
const (
	ProcessingStatusPending   = "pending"
	ProcessingStatusCompleted = "completed"
	ProcessingStatusFailed    = "failed"
)

// 缩略图状态
const (
	ThumbnailStatusPending    = "pending"
	ThumbnailStatusGenerating = "generating"
	ThumbnailStatusCompleted  = "completed"
	ThumbnailStatusFailed     = "failed"
)

// StringList 字符串列表，存储为 jsonb
type StringList []string

// Value 实现 driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// FileRecord 已摄取文件的元数据记录
// 去重组由 (owner_id, content_hash) 确定，组内 duplicate_seq 从 0 开始密集分配，
// idx_owner_hash_seq 唯一索引是并发上传下序号不冲突的最终保证
type FileRecord struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	OwnerID      string `gorm:"index;size:36;not null;uniqueIndex:idx_owner_hash_seq" json:"owner_id"`
	OriginalName string `gorm:"size:255;not null" json:"original_name"`
	DisplayName  string `gorm:"size:255;not null" json:"display_name"`
	StorageKey   string `gorm:"uniqueIndex;size:64;not null" json:"storage_key"`
	FileSize     int64  `gorm:"default:0" json:"file_size"`
	ContentType  string `gorm:"size:100" json:"content_type"`
	StorageType  string `gorm:"size:20" json:"storage_type"` // local, minio
	StoragePath  string `gorm:"size:500" json:"storage_path"`
	ContentHash  string `gorm:"size:64;not null;uniqueIndex:idx_owner_hash_seq" json:"content_hash"`

	// 内容处理结果，处理失败时保持空值
	ProcessingStatus string     `gorm:"size:20;default:pending" json:"processing_status"`
	ExtractedText    string     `gorm:"type:text" json:"extracted_text,omitempty"`
	PageCount        int        `gorm:"default:0" json:"page_count"`
	Language         string     `gorm:"size:20" json:"language,omitempty"`
	Keywords         StringList `gorm:"type:jsonb" json:"keywords,omitempty"`

	// 去重信息，duplicate_seq=0 表示组内原始记录
	IsDuplicate    bool    `gorm:"default:false" json:"is_duplicate"`
	DuplicateSeq   int     `gorm:"default:0;uniqueIndex:idx_owner_hash_seq" json:"duplicate_seq"`
	OriginalFileID *string `gorm:"size:36" json:"original_file_id,omitempty"`

	// 外部镜像信息，镜像成功前保持空值，空值不阻塞 processing_status
	RemoteFileID *string `gorm:"size:128" json:"remote_file_id,omitempty"`
	RemoteDocID  *string `gorm:"size:128" json:"remote_doc_id,omitempty"`
	ShareStatus  string  `gorm:"size:20" json:"share_status,omitempty"` // shared, unshared

	ThumbnailStatus string `gorm:"size:20;default:pending" json:"thumbnail_status"`
	ThumbnailPath   string `gorm:"size:500" json:"thumbnail_path,omitempty"`

	Category  string     `gorm:"size:50;index" json:"category,omitempty"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	DeletedBy string     `gorm:"size:36" json:"deleted_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (FileRecord) TableName() string {
	return "file_records"
}

// IsDeleted 是否已软删除
func (f *FileRecord) IsDeleted() bool {
	return f.DeletedAt != nil
}
