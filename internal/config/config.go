package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Mirror    MirrorConfig
	Thumbnail ThumbnailConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string
	Environment string
	Version     string
	Debug       bool
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string
	Port         int
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StorageConfig 存储配置
type StorageConfig struct {
	// Type 首选后端: local 或 minio
	Type string
	// Fallback 可选的回退后端，首选后端不可用或超限时使用
	Fallback string
	Local    LocalStorageConfig
	MinIO    MinIOStorageConfig
	// TimeoutSeconds 单次存储操作超时
	TimeoutSeconds int
}

// LocalStorageConfig 本地存储配置
type LocalStorageConfig struct {
	BasePath  string
	URLPrefix string
}

// MinIOStorageConfig MinIO 存储配置
type MinIOStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLPrefix string
}

// UploadConfig 上传限制配置
type UploadConfig struct {
	// MaxSizeBytes 单文件大小上限
	MaxSizeBytes int64
	// AllowedTypes 允许的内容类型
	AllowedTypes []string
}

// MirrorConfig 外部文档服务镜像配置
type MirrorConfig struct {
	Enabled bool
	BaseURL string
	// OAuth2 客户端凭据，令牌获取与刷新由 oauth2 传输层完成
	ClientID     string
	ClientSecret string
	TokenURL     string
	// TeamFolderID 共享团队目录，放置策略首选
	TeamFolderID string
	// ParentFolderID 托管父目录，按 owner 自动建子目录
	ParentFolderID string
	// OwnFolderID 服务自有目录，兜底放置
	OwnFolderID string
	// Convert 上传后是否转换为可编辑文档
	Convert bool
	// ShareWith 上传后共享的收件人，空则不共享
	ShareWith string
	ShareRole string
	// MaxRetries 同一策略内瞬时错误的重试上限
	MaxRetries     int
	TimeoutSeconds int
}

// ThumbnailConfig 缩略图渲染配置
type ThumbnailConfig struct {
	Enabled        bool
	RenderURL      string
	TimeoutSeconds int
}

// Load 加载配置
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		// 默认配置
		setDefaults(v)
	}

	// 环境变量
	v.SetEnvPrefix("RESUME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetAddr 获取服务器地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr 获取 Redis 地址
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "resume-modifier")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", true)

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "resume_modifier")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxLifetime", 300)

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Storage
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.fallback", "")
	v.SetDefault("storage.local.basePath", "./data/files")
	v.SetDefault("storage.local.urlPrefix", "/files")
	v.SetDefault("storage.timeoutSeconds", 30)

	// Upload
	v.SetDefault("upload.maxSizeBytes", 10<<20)
	v.SetDefault("upload.allowedTypes", []string{
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
	})

	// Mirror
	v.SetDefault("mirror.enabled", false)
	v.SetDefault("mirror.convert", true)
	v.SetDefault("mirror.shareRole", "reader")
	v.SetDefault("mirror.maxRetries", 3)
	v.SetDefault("mirror.timeoutSeconds", 30)

	// Thumbnail
	v.SetDefault("thumbnail.enabled", false)
	v.SetDefault("thumbnail.timeoutSeconds", 20)
}
