package extract

import (
	"context"
	"strings"
	"testing"
)

// ========== 提取服务测试 ==========

func TestExtractPlainText(t *testing.T) {
	svc := NewService()
	text := "Senior backend engineer. Golang golang kubernetes postgres postgres postgres."

	result, err := svc.Extract(context.Background(), "resume.txt", "text/plain", []byte(text))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if result.Text != text {
		t.Errorf("Text = %q", result.Text)
	}
	// 纯文本没有分页概念
	if result.PageCount != 0 {
		t.Errorf("PageCount = %d, want 0", result.PageCount)
	}
	if result.Language != "en" {
		t.Errorf("Language = %q, want en", result.Language)
	}
	if len(result.Keywords) == 0 || result.Keywords[0] != "postgres" {
		t.Errorf("Keywords = %v, want postgres first", result.Keywords)
	}
}

func TestExtractChineseText(t *testing.T) {
	svc := NewService()

	result, err := svc.Extract(context.Background(), "resume.txt", "text/plain",
		[]byte("五年后端开发经验，精通分布式系统与数据库调优"))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if result.Language != "zh" {
		t.Errorf("Language = %q, want zh", result.Language)
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	svc := NewService()

	if _, err := svc.Extract(context.Background(), "resume.txt", "text/plain", nil); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	svc := NewService()

	_, err := svc.Extract(context.Background(), "photo.png", "image/png", []byte("data"))
	if err == nil {
		t.Fatal("expected error for unsupported type")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("error = %v", err)
	}
}

func TestExtractInfersExtensionFromContentType(t *testing.T) {
	svc := NewService()

	result, err := svc.Extract(context.Background(), "no-extension", "text/plain", []byte("hello world content"))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if result.Text == "" {
		t.Error("expected extracted text")
	}
}
