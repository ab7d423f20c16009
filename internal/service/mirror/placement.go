package mirror

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"
)

// Strategy 一种远端放置位置
// 按声明顺序尝试，第一个成功的策略胜出，其余放弃
type Strategy interface {
	Name() string
	// Place 上传并返回远端文件ID
	Place(ctx context.Context, api DocumentAPI, req *Request) (string, error)
}

// ========== 放置策略 ==========

// teamFolderStrategy 共享团队目录
type teamFolderStrategy struct {
	folderID string
}

func (s *teamFolderStrategy) Name() string { return "team-folder" }

func (s *teamFolderStrategy) Place(ctx context.Context, api DocumentAPI, req *Request) (string, error) {
	return api.Upload(ctx, req.FileName, s.folderID, req.ContentType, bytes.NewReader(req.Data))
}

// managedParentStrategy 托管父目录，首次使用时为 owner 自动建子目录
type managedParentStrategy struct {
	parentID string
}

func (s *managedParentStrategy) Name() string { return "managed-parent" }

func (s *managedParentStrategy) Place(ctx context.Context, api DocumentAPI, req *Request) (string, error) {
	folderID, err := api.EnsureFolder(ctx, s.parentID, req.OwnerID)
	if err != nil {
		return "", fmt.Errorf("failed to provision owner folder: %w", err)
	}
	return api.Upload(ctx, req.FileName, folderID, req.ContentType, bytes.NewReader(req.Data))
}

// ownFolderStrategy 服务自有目录
type ownFolderStrategy struct {
	folderID string
}

func (s *ownFolderStrategy) Name() string { return "own-folder" }

func (s *ownFolderStrategy) Place(ctx context.Context, api DocumentAPI, req *Request) (string, error) {
	return api.Upload(ctx, req.FileName, s.folderID, req.ContentType, bytes.NewReader(req.Data))
}

// rootStrategy 无父目录的根放置，最后兜底
type rootStrategy struct{}

func (s *rootStrategy) Name() string { return "root" }

func (s *rootStrategy) Place(ctx context.Context, api DocumentAPI, req *Request) (string, error) {
	return api.Upload(ctx, req.FileName, "", req.ContentType, bytes.NewReader(req.Data))
}

// ========== 放置执行器 ==========

// Placer 按序执行放置策略
// 配额/权限错误切换下一策略；瞬时错误在同一策略内重试至上限后再切换
type Placer struct {
	api        DocumentAPI
	strategies []Strategy
	maxRetries int
	// retryDelay 重试间隔，测试时可调小
	retryDelay time.Duration
}

// NewPlacer 创建放置执行器
func NewPlacer(api DocumentAPI, strategies []Strategy, maxRetries int) *Placer {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Placer{
		api:        api,
		strategies: strategies,
		maxRetries: maxRetries,
		retryDelay: 200 * time.Millisecond,
	}
}

// Place 执行放置，返回远端文件ID和胜出的策略名
func (p *Placer) Place(ctx context.Context, req *Request) (string, string, error) {
	if len(p.strategies) == 0 {
		return "", "", fmt.Errorf("no placement strategies configured")
	}

	var lastErr error
	for _, strategy := range p.strategies {
		fileID, err := p.tryStrategy(ctx, strategy, req)
		if err == nil {
			return fileID, strategy.Name(), nil
		}
		lastErr = err
		log.Printf("Warning: placement strategy %s failed: %v", strategy.Name(), err)
	}
	return "", "", fmt.Errorf("all placement strategies exhausted: %w", lastErr)
}

// tryStrategy 单一策略内的瞬时错误重试
func (p *Placer) tryStrategy(ctx context.Context, strategy Strategy, req *Request) (string, error) {
	var err error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		var fileID string
		fileID, err = strategy.Place(ctx, p.api, req)
		if err == nil {
			return fileID, nil
		}
		if !IsTransientError(err) {
			return "", err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.retryDelay):
		}
	}
	return "", err
}
