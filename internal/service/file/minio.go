package file

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage MinIO 对象存储
type MinIOStorage struct {
	client     *minio.Client
	bucketName string
	urlPrefix  string // 用于生成访问URL
}

// MinIOConfig MinIO 配置
type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	URLPrefix  string
}

// NewMinIOStorage 创建 MinIO 存储服务
func NewMinIOStorage(cfg *MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, &ConfigError{Backend: string(StorageTypeMinIO), Err: err}
	}

	// 检查 bucket 是否存在，不存在则创建
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, &ConfigError{Backend: string(StorageTypeMinIO), Err: err}
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{})
		if err != nil {
			return nil, &ConfigError{Backend: string(StorageTypeMinIO), Err: err}
		}
	}

	return &MinIOStorage{
		client:     client,
		bucketName: cfg.BucketName,
		urlPrefix:  strings.TrimSuffix(cfg.URLPrefix, "/"),
	}, nil
}

// Save 保存文件到 MinIO
// PutObject 本身保证对象要么完整可见要么不可见
func (s *MinIOStorage) Save(ctx context.Context, req *SaveRequest) (string, error) {
	ext := filepath.Ext(req.FileName)
	if ext == "" {
		ext = extensionByContentType(req.ContentType)
	}
	objectName := fmt.Sprintf("%s/%s%s", req.OwnerID, req.StorageKey, ext)

	_, err := s.client.PutObject(ctx, s.bucketName, objectName, req.Reader, req.Size, minio.PutObjectOptions{
		ContentType: req.ContentType,
	})
	if err != nil {
		return "", classifyMinIOError(err)
	}

	return objectName, nil
}

// Get 获取文件内容
func (s *MinIOStorage) Get(ctx context.Context, location string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.bucketName, location, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get file from MinIO: %w", err)
	}
	return object, nil
}

// Delete 删除文件
// RemoveObject 对不存在的对象返回成功，满足幂等删除
func (s *MinIOStorage) Delete(ctx context.Context, location string) error {
	err := s.client.RemoveObject(ctx, s.bucketName, location, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetURL 获取文件的访问URL
func (s *MinIOStorage) GetURL(location string) string {
	return fmt.Sprintf("%s/%s/%s", s.urlPrefix, s.bucketName, location)
}

// Type 后端类型
func (s *MinIOStorage) Type() StorageType {
	return StorageTypeMinIO
}

// classifyMinIOError 鉴权、bucket 缺失、配额类 4xx 视为后端不可用，其余按瞬时错误处理
func classifyMinIOError(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
		resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests {
		return &ConfigError{Backend: string(StorageTypeMinIO), Err: err}
	}
	return &TransientError{Err: err}
}
