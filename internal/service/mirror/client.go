package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Client DocumentAPI 的 REST 实现
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient 创建外部文档服务客户端
// 令牌注入由 oauth2 传输层完成，过期刷新发生在流水线之外
func NewClient(baseURL string, ts oauth2.TokenSource, timeout time.Duration) *Client {
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = timeout
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
	}
}

// idResponse 通用的 {"id": "..."} 响应
type idResponse struct {
	ID string `json:"id"`
}

// Upload 上传文件
func (c *Client) Upload(ctx context.Context, name, parentID, contentType string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if parentID != "" {
		if err := mw.WriteField("parent", parentID); err != nil {
			return "", fmt.Errorf("failed to build upload request: %w", err)
		}
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp idResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Convert 转换为可编辑文档
func (c *Client) Convert(ctx context.Context, fileID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/files/%s/convert", c.baseURL, fileID), nil)
	if err != nil {
		return "", err
	}
	var resp idResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Share 设置共享权限
func (c *Client) Share(ctx context.Context, id, recipient, role string) error {
	payload, err := json.Marshal(map[string]string{
		"recipient": recipient,
		"role":      role,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/files/%s/permissions", c.baseURL, id), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// EnsureFolder 查找或创建子目录
func (c *Client) EnsureFolder(ctx context.Context, parentID, name string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"name":   name,
		"parent": parentID,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/folders", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp idResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// do 执行请求并分类错误
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	reqErr := fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))

	return classifyStatus(resp.StatusCode, reqErr)
}

// classifyStatus 权限/配额类状态切换放置策略，其余按瞬时错误重试
func classifyStatus(status int, err error) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &PlacementError{Code: "permission", Err: err}
	case http.StatusNotFound:
		return &PlacementError{Code: "not_found", Err: err}
	case http.StatusInsufficientStorage, http.StatusPaymentRequired:
		return &PlacementError{Code: "quota", Err: err}
	default:
		return &TransientError{Err: err}
	}
}
