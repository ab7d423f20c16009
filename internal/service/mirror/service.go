package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/BailinYe/resume-modifier/internal/config"
)

// Request 镜像请求
type Request struct {
	OwnerID     string
	FileName    string
	ContentType string
	Data        []byte
}

// Result 镜像结果
// 转换与共享是独立的尽力而为子步骤，失败只追加到 Warnings
type Result struct {
	RemoteFileID string
	RemoteDocID  string
	Strategy     string
	Shared       bool
	Warnings     []string
}

// Service 镜像服务
type Service struct {
	api       DocumentAPI
	placer    *Placer
	convert   bool
	shareWith string
	shareRole string
	timeout   time.Duration
}

// NewService 创建镜像服务
// 策略顺序固定：团队目录 → 托管父目录 → 自有目录 → 根放置，未配置的跳过
func NewService(api DocumentAPI, cfg *config.MirrorConfig) *Service {
	var strategies []Strategy
	if cfg.TeamFolderID != "" {
		strategies = append(strategies, &teamFolderStrategy{folderID: cfg.TeamFolderID})
	}
	if cfg.ParentFolderID != "" {
		strategies = append(strategies, &managedParentStrategy{parentID: cfg.ParentFolderID})
	}
	if cfg.OwnFolderID != "" {
		strategies = append(strategies, &ownFolderStrategy{folderID: cfg.OwnFolderID})
	}
	strategies = append(strategies, &rootStrategy{})

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Service{
		api:       api,
		placer:    NewPlacer(api, strategies, cfg.MaxRetries),
		convert:   cfg.Convert,
		shareWith: cfg.ShareWith,
		shareRole: cfg.ShareRole,
		timeout:   timeout,
	}
}

// Mirror 上传副本并执行可选的转换与共享
func (s *Service) Mirror(ctx context.Context, req *Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fileID, strategy, err := s.placer.Place(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("remote placement failed: %w", err)
	}

	result := &Result{RemoteFileID: fileID, Strategy: strategy}

	if s.convert {
		docID, err := s.api.Convert(ctx, fileID)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("conversion to editable document failed: %v", err))
		} else {
			result.RemoteDocID = docID
		}
	}

	if s.shareWith != "" {
		// 优先共享可编辑文档
		target := result.RemoteDocID
		if target == "" {
			target = fileID
		}
		if err := s.api.Share(ctx, target, s.shareWith, s.shareRole); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("sharing with %s failed: %v", s.shareWith, err))
		} else {
			result.Shared = true
		}
	}

	return result, nil
}
