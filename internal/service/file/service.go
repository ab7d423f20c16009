package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/BailinYe/resume-modifier/internal/model"
	"github.com/BailinYe/resume-modifier/internal/repository"
	"github.com/BailinYe/resume-modifier/internal/service/extract"
	"github.com/BailinYe/resume-modifier/internal/service/mirror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 唯一索引冲突时重新解析序号的次数上限
const maxPersistAttempts = 3

// Extractor 内容提取（尽力而为）
type Extractor interface {
	Extract(ctx context.Context, fileName, contentType string, data []byte) (*extract.Extraction, error)
}

// Mirrorer 外部文档服务镜像（尽力而为）
type Mirrorer interface {
	Mirror(ctx context.Context, req *mirror.Request) (*mirror.Result, error)
}

// ThumbnailRenderer 缩略图渲染（提交后异步，尽力而为）
type ThumbnailRenderer interface {
	Supports(contentType string) bool
	Render(ctx context.Context, contentType string, data []byte) ([]byte, error)
}

// Deps 编排器的全部外部依赖
// 显式注入而非全局句柄，测试可以逐项替换
type Deps struct {
	Repo      repository.FileRepository
	Gateway   *Gateway
	Resolver  *Resolver
	Validator *Validator
	Extractor Extractor         // 可为 nil
	Mirror    Mirrorer          // 可为 nil
	Thumbnail ThumbnailRenderer // 可为 nil
}

// Service 文件摄取编排器
type Service struct {
	repo      repository.FileRepository
	gateway   *Gateway
	resolver  *Resolver
	validator *Validator
	extractor Extractor
	mirror    Mirrorer
	thumbs    ThumbnailRenderer
}

// NewService 创建文件服务
func NewService(deps Deps) *Service {
	return &Service{
		repo:      deps.Repo,
		gateway:   deps.Gateway,
		resolver:  deps.Resolver,
		validator: deps.Validator,
		extractor: deps.Extractor,
		mirror:    deps.Mirror,
		thumbs:    deps.Thumbnail,
	}
}

// IngestRequest 摄取请求
type IngestRequest struct {
	OwnerID     string
	FileName    string
	ContentType string
	Reader      io.Reader
}

// IngestResult 摄取结果
// 成功时 Record 必有稳定 ID 和显示名，降级能力全部列在 Warnings 里
type IngestResult struct {
	Record   *model.FileRecord `json:"record"`
	Warnings []Warning         `json:"warnings,omitempty"`
}

// Ingest 执行完整摄取流水线
//
// 校验 → 去重 → 写存储 → (内容提取 ‖ 外部镜像) → 提交元数据 → 异步缩略图
//
// 写存储之前失败无副作用；写存储之后提交失败必须补偿删除已写对象，
// 补偿也失败时把孤儿位置显式报给运维而不是悄悄丢掉
func (s *Service) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	// ---- Validating：此前无任何副作用 ----
	data, err := io.ReadAll(req.Reader)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("failed to read upload: %v", err)}
	}
	// 大小校验以实际读到的字节数为准，调用方声明的长度不可信
	if err := s.validator.Validate(req.FileName, int64(len(data)), head(data)); err != nil {
		return nil, err
	}

	var warnings []Warning

	// ---- Deduplicating：永不致命 ----
	hash := HashBytes(data)
	res := s.resolver.Resolve(ctx, req.OwnerID, req.FileName, hash)
	if res.Warning != nil {
		warnings = append(warnings, *res.Warning)
	}

	// ---- Storing：失败即终止，尚无需要补偿的状态 ----
	if err := ctx.Err(); err != nil {
		return nil, &StorageError{Err: err}
	}
	storageKey := uuid.New().String()
	put, err := s.gateway.Put(ctx, &SaveRequest{
		StorageKey:  storageKey,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	// ---- Processing ‖ MirroringExternal：并发、相互独立、各自降级 ----
	var (
		wg         sync.WaitGroup
		extraction *extract.Extraction
		extractErr error
		mirrored   *mirror.Result
		mirrorErr  error
	)
	if s.extractor != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			extraction, extractErr = s.extractor.Extract(ctx, req.FileName, req.ContentType, data)
		}()
	}
	if s.mirror != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mirrored, mirrorErr = s.mirror.Mirror(ctx, &mirror.Request{
				OwnerID:     req.OwnerID,
				FileName:    res.DisplayName,
				ContentType: req.ContentType,
				Data:        data,
			})
		}()
	}
	wg.Wait()

	record := &model.FileRecord{
		ID:               uuid.New().String(),
		OwnerID:          req.OwnerID,
		OriginalName:     req.FileName,
		DisplayName:      res.DisplayName,
		StorageKey:       storageKey,
		FileSize:         int64(len(data)),
		ContentType:      req.ContentType,
		StorageType:      string(put.Backend),
		StoragePath:      put.Location,
		ContentHash:      hash,
		ProcessingStatus: model.ProcessingStatusFailed,
		IsDuplicate:      res.IsDuplicate,
		DuplicateSeq:     res.Sequence,
		OriginalFileID:   res.OriginalID,
		ThumbnailStatus:  model.ThumbnailStatusPending,
	}

	if s.extractor != nil {
		if extractErr != nil {
			warnings = append(warnings, NewWarning(WarnStageProcessing, "content extraction failed: %v", extractErr))
		} else {
			record.ProcessingStatus = model.ProcessingStatusCompleted
			record.ExtractedText = extraction.Text
			record.PageCount = extraction.PageCount
			record.Language = extraction.Language
			record.Keywords = extraction.Keywords
		}
	} else {
		record.ProcessingStatus = model.ProcessingStatusPending
	}

	if s.mirror != nil {
		if mirrorErr != nil {
			warnings = append(warnings, NewWarning(WarnStageMirror, "external mirroring failed: %v", mirrorErr))
		} else {
			if mirrored.RemoteFileID != "" {
				id := mirrored.RemoteFileID
				record.RemoteFileID = &id
			}
			if mirrored.RemoteDocID != "" {
				id := mirrored.RemoteDocID
				record.RemoteDocID = &id
			}
			if mirrored.Shared {
				record.ShareStatus = "shared"
			}
			for _, w := range mirrored.Warnings {
				warnings = append(warnings, NewWarning(WarnStageMirror, "%s", w))
			}
		}
	}

	// ---- Persisting：失败触发补偿删除 ----
	if err := s.persist(ctx, record, req.FileName, hash); err != nil {
		return nil, err
	}

	// ---- 缩略图：严格在提交之后，异步尽力而为 ----
	if s.thumbs != nil && s.thumbs.Supports(req.ContentType) {
		go s.generateThumbnail(context.WithoutCancel(ctx), record, data)
	} else {
		warnings = append(warnings, NewWarning(WarnStageThumbnail, "no thumbnail renderer for %s", req.ContentType))
	}

	return &IngestResult{Record: record, Warnings: warnings}, nil
}

// persist 提交元数据
// (owner, hash, seq) 唯一索引冲突说明并发上传抢了同一序号，重新解析后重试；
// 最终失败时补偿删除已写入的对象，保证不留孤儿
func (s *Service) persist(ctx context.Context, record *model.FileRecord, originalName, hash string) error {
	// 取消发生在写存储之后：不再提交，但补偿仍要做
	err := ctx.Err()
	if err == nil {
		for attempt := 0; attempt < maxPersistAttempts; attempt++ {
			err = s.repo.Create(record)
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				break
			}
			res := s.resolver.Resolve(ctx, record.OwnerID, originalName, hash)
			record.IsDuplicate = res.IsDuplicate
			record.DisplayName = res.DisplayName
			record.DuplicateSeq = res.Sequence
			record.OriginalFileID = res.OriginalID
		}
	}

	// 补偿删除必须执行，即使请求已被取消
	cleanupCtx := context.WithoutCancel(ctx)
	delErr := s.gateway.Delete(cleanupCtx, StorageType(record.StorageType), record.StoragePath)
	if delErr != nil {
		// 孤儿对象留给离线对账，这里必须让运维看见
		log.Printf("ERROR: orphaned object after failed persistence: backend=%s location=%s delete error=%v",
			record.StorageType, record.StoragePath, delErr)
		return &PersistenceError{Err: err, Compensated: false, Location: record.StoragePath}
	}
	return &PersistenceError{Err: err, Compensated: true}
}

// generateThumbnail 提交后异步生成缩略图，只改 thumbnail 字段
func (s *Service) generateThumbnail(ctx context.Context, record *model.FileRecord, data []byte) {
	if err := s.repo.UpdateFields(record.ID, map[string]interface{}{
		"thumbnail_status": model.ThumbnailStatusGenerating,
	}); err != nil {
		log.Printf("Warning: failed to mark thumbnail generating for %s: %v", record.ID, err)
	}

	fail := func(err error) {
		log.Printf("Warning: thumbnail generation failed for %s: %v", record.ID, err)
		_ = s.repo.UpdateFields(record.ID, map[string]interface{}{
			"thumbnail_status": model.ThumbnailStatusFailed,
		})
	}

	img, err := s.thumbs.Render(ctx, record.ContentType, data)
	if err != nil {
		fail(err)
		return
	}

	put, err := s.gateway.Put(ctx, &SaveRequest{
		StorageKey:  record.StorageKey + "-thumb",
		FileName:    "thumbnail.png",
		ContentType: "image/png",
		Size:        int64(len(img)),
		Reader:      bytes.NewReader(img),
		OwnerID:     record.OwnerID,
	})
	if err != nil {
		fail(err)
		return
	}

	if err := s.repo.UpdateFields(record.ID, map[string]interface{}{
		"thumbnail_status": model.ThumbnailStatusCompleted,
		"thumbnail_path":   put.Location,
	}); err != nil {
		log.Printf("Warning: failed to record thumbnail for %s: %v", record.ID, err)
	}
}

// ========== 生命周期操作 ==========

// Get 获取文件记录，校验归属
func (s *Service) Get(ctx context.Context, ownerID, id string) (*model.FileRecord, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("file not found: %w", err)
	}
	if record.OwnerID != ownerID {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	return record, nil
}

// Download 获取记录及内容流
func (s *Service) Download(ctx context.Context, ownerID, id string) (*model.FileRecord, io.ReadCloser, error) {
	record, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}
	if record.IsDeleted() {
		return nil, nil, fmt.Errorf("file not found: %s", id)
	}
	reader, err := s.gateway.Get(ctx, StorageType(record.StorageType), record.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get file content: %w", err)
	}
	return record, reader, nil
}

// List 列出 owner 的文件
func (s *Service) List(ctx context.Context, ownerID string, offset, limit int) ([]*model.FileRecord, int64, error) {
	return s.repo.ListByOwner(ownerID, offset, limit)
}

// URL 获取文件访问URL
func (s *Service) URL(ctx context.Context, ownerID, id string) (string, error) {
	record, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	return s.gateway.URL(StorageType(record.StorageType), record.StoragePath), nil
}

// UpdateCategory 更新分类标签
func (s *Service) UpdateCategory(ctx context.Context, ownerID, id, category string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.UpdateFields(id, map[string]interface{}{"category": category})
}

// SoftDelete 软删除，保留字节与记录
func (s *Service) SoftDelete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(id, ownerID)
}

// PermanentDelete 物理删除：先删字节再删记录
// 网关删除是幂等的，重复调用不会报错
func (s *Service) PermanentDelete(ctx context.Context, ownerID, id string) error {
	record, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.gateway.Delete(ctx, StorageType(record.StorageType), record.StoragePath); err != nil {
		return fmt.Errorf("failed to delete file from storage: %w", err)
	}
	if record.ThumbnailPath != "" {
		if err := s.gateway.Delete(ctx, StorageType(record.StorageType), record.ThumbnailPath); err != nil {
			log.Printf("Warning: failed to delete thumbnail %s: %v", record.ThumbnailPath, err)
		}
	}
	return s.repo.Delete(id)
}

// head 返回内容嗅探所需的前 512 字节
func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}
