package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/BailinYe/resume-modifier/internal/config"
	"github.com/BailinYe/resume-modifier/internal/repository"
	"github.com/BailinYe/resume-modifier/internal/service/auth"
	"github.com/BailinYe/resume-modifier/internal/service/extract"
	"github.com/BailinYe/resume-modifier/internal/service/file"
	"github.com/BailinYe/resume-modifier/internal/service/mirror"
	"github.com/BailinYe/resume-modifier/internal/service/thumbnail"
)

// Services 服务集合
type Services struct {
	File *file.Service
	Auth *auth.Service

	Config *config.Config
}

// NewServices 创建所有服务
// 镜像和缩略图是可选协作方，未启用时流水线跳过对应阶段
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	// 存储网关：首选后端 + 可选回退后端
	gateway, err := file.NewGatewayFromConfig(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage gateway: %w", err)
	}

	// 去重解析器：redis 锁是优化项，拿不到锁照常解析
	var locker file.Locker
	if redisClient != nil {
		locker = file.NewRedisLocker(redisClient)
	}
	resolver := file.NewResolver(repo.File, locker)

	validator := file.NewValidator(&cfg.Upload)

	// 内容提取
	extractor := extract.NewService()

	// 外部镜像（可选）
	var mirrorer file.Mirrorer
	if cfg.Mirror.Enabled {
		ts := (&clientcredentials.Config{
			ClientID:     cfg.Mirror.ClientID,
			ClientSecret: cfg.Mirror.ClientSecret,
			TokenURL:     cfg.Mirror.TokenURL,
		}).TokenSource(context.Background())
		timeout := time.Duration(cfg.Mirror.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client := mirror.NewClient(cfg.Mirror.BaseURL, ts, timeout)
		mirrorer = mirror.NewService(client, &cfg.Mirror)
		log.Printf("Mirror service enabled: %s", cfg.Mirror.BaseURL)
	}

	// 缩略图渲染（可选）
	var renderer file.ThumbnailRenderer
	if cfg.Thumbnail.Enabled {
		renderer = thumbnail.NewHTTPRenderer(&cfg.Thumbnail)
		log.Printf("Thumbnail rendering enabled: %s", cfg.Thumbnail.RenderURL)
	}

	fileSvc := file.NewService(file.Deps{
		Repo:      repo.File,
		Gateway:   gateway,
		Resolver:  resolver,
		Validator: validator,
		Extractor: extractor,
		Mirror:    mirrorer,
		Thumbnail: renderer,
	})

	return &Services{
		File:   fileSvc,
		Auth:   auth.NewService(repo),
		Config: cfg,
	}, nil
}
