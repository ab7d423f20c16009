// Package thumbnail 缩略图渲染协作方
// 渲染在元数据提交之后异步执行，失败只影响记录的 thumbnail 字段
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BailinYe/resume-modifier/internal/config"
)

// 可渲染的富文档类型
var richDocumentTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// HTTPRenderer 调用外部渲染服务生成缩略图
type HTTPRenderer struct {
	renderURL string
	http      *http.Client
}

// NewHTTPRenderer 创建渲染客户端
func NewHTTPRenderer(cfg *config.ThumbnailConfig) *HTTPRenderer {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPRenderer{
		renderURL: cfg.RenderURL,
		http:      &http.Client{Timeout: timeout},
	}
}

// Supports 是否为可渲染的富文档类型
func (r *HTTPRenderer) Supports(contentType string) bool {
	return richDocumentTypes[contentType]
}

// Render 渲染首页缩略图，返回 PNG 字节
func (r *HTTPRenderer) Render(ctx context.Context, contentType string, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.renderURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render service returned status %d", resp.StatusCode)
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered thumbnail: %w", err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("render service returned empty thumbnail")
	}
	return img, nil
}
