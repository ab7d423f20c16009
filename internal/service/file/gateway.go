package file

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/BailinYe/resume-modifier/internal/config"
)

// Gateway 存储网关，封装首选后端与可选回退后端
// 首选后端返回配置/配额类错误时切换回退后端，瞬时错误不触发切换
type Gateway struct {
	primary  Storage
	fallback Storage
	timeout  time.Duration
}

// PutResult 写入结果
type PutResult struct {
	Location string
	Backend  StorageType
	Size     int64
}

// NewGateway 创建存储网关
func NewGateway(primary, fallback Storage, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{primary: primary, fallback: fallback, timeout: timeout}
}

// NewGatewayFromConfig 从配置创建存储网关
func NewGatewayFromConfig(cfg *config.StorageConfig) (*Gateway, error) {
	primary, err := newBackend(StorageType(cfg.Type), cfg)
	if err != nil {
		return nil, err
	}

	var fallback Storage
	if cfg.Fallback != "" {
		fallback, err = newBackend(StorageType(cfg.Fallback), cfg)
		if err != nil {
			// 回退后端建不起来只降级为单后端运行
			log.Printf("Warning: fallback storage %s unavailable: %v", cfg.Fallback, err)
			fallback = nil
		}
	}

	return NewGateway(primary, fallback, time.Duration(cfg.TimeoutSeconds)*time.Second), nil
}

// newBackend 创建单一后端
func newBackend(t StorageType, cfg *config.StorageConfig) (Storage, error) {
	switch t {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.Local.BasePath, cfg.Local.URLPrefix)
	case StorageTypeMinIO:
		if cfg.MinIO.Endpoint == "" || cfg.MinIO.AccessKey == "" || cfg.MinIO.SecretKey == "" || cfg.MinIO.Bucket == "" {
			return nil, &ConfigError{Backend: string(StorageTypeMinIO), Err: fmt.Errorf("missing required MinIO config")}
		}
		urlPrefix := cfg.MinIO.URLPrefix
		if urlPrefix == "" {
			urlPrefix = cfg.MinIO.Endpoint
		}
		return NewMinIOStorage(&MinIOConfig{
			Endpoint:   cfg.MinIO.Endpoint,
			AccessKey:  cfg.MinIO.AccessKey,
			SecretKey:  cfg.MinIO.SecretKey,
			BucketName: cfg.MinIO.Bucket,
			UseSSL:     cfg.MinIO.UseSSL,
			URLPrefix:  urlPrefix,
		})
	default:
		return nil, &ConfigError{Backend: string(t), Err: fmt.Errorf("unsupported storage type")}
	}
}

// Put 写入对象，必要时回退
func (g *Gateway) Put(ctx context.Context, req *SaveRequest) (*PutResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	location, err := g.primary.Save(ctx, req)
	if err == nil {
		return &PutResult{Location: location, Backend: g.primary.Type(), Size: req.Size}, nil
	}

	// 只有后端不可用/超限才切换，瞬时错误交由调用方处理
	if g.fallback == nil || !IsConfigError(err) {
		return nil, err
	}

	log.Printf("Warning: primary storage %s unavailable, falling back to %s: %v",
		g.primary.Type(), g.fallback.Type(), err)

	location, ferr := g.fallback.Save(ctx, req)
	if ferr != nil {
		return nil, ferr
	}
	return &PutResult{Location: location, Backend: g.fallback.Type(), Size: req.Size}, nil
}

// Get 读取对象
func (g *Gateway) Get(ctx context.Context, backend StorageType, location string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	s, err := g.backendFor(backend)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, location)
}

// Delete 删除对象，位置不存在视为成功
func (g *Gateway) Delete(ctx context.Context, backend StorageType, location string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	s, err := g.backendFor(backend)
	if err != nil {
		return err
	}
	return s.Delete(ctx, location)
}

// URL 获取对象访问URL
func (g *Gateway) URL(backend StorageType, location string) string {
	s, err := g.backendFor(backend)
	if err != nil {
		return ""
	}
	return s.GetURL(location)
}

// PrimaryType 首选后端类型
func (g *Gateway) PrimaryType() StorageType {
	return g.primary.Type()
}

// backendFor 按记录中的后端标识找到对应后端
func (g *Gateway) backendFor(t StorageType) (Storage, error) {
	if g.primary.Type() == t {
		return g.primary, nil
	}
	if g.fallback != nil && g.fallback.Type() == t {
		return g.fallback, nil
	}
	return nil, &ConfigError{Backend: string(t), Err: fmt.Errorf("no backend configured for type %s", t)}
}
