package thumbnail

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BailinYe/resume-modifier/internal/config"
)

// ========== 缩略图渲染测试 ==========

func TestSupports(t *testing.T) {
	r := NewHTTPRenderer(&config.ThumbnailConfig{RenderURL: "http://render"})

	if !r.Supports("application/pdf") {
		t.Error("pdf must be renderable")
	}
	if !r.Supports("application/vnd.openxmlformats-officedocument.wordprocessingml.document") {
		t.Error("docx must be renderable")
	}
	if r.Supports("text/plain") {
		t.Error("plain text has no thumbnail")
	}
}

func TestRender(t *testing.T) {
	png := []byte("\x89PNG fake image bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/pdf" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "pdf-bytes" {
			t.Errorf("body = %q", body)
		}
		w.Write(png)
	}))
	defer srv.Close()

	r := NewHTTPRenderer(&config.ThumbnailConfig{RenderURL: srv.URL, TimeoutSeconds: 5})

	img, err := r.Render(context.Background(), "application/pdf", []byte("pdf-bytes"))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(img) != string(png) {
		t.Error("rendered bytes mismatch")
	}
}

func TestRenderServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewHTTPRenderer(&config.ThumbnailConfig{RenderURL: srv.URL, TimeoutSeconds: 5})

	if _, err := r.Render(context.Background(), "application/pdf", []byte("x")); err == nil {
		t.Error("expected error on non-200 response")
	}
}

func TestRenderEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 但空响应体
	}))
	defer srv.Close()

	r := NewHTTPRenderer(&config.ThumbnailConfig{RenderURL: srv.URL, TimeoutSeconds: 5})

	if _, err := r.Render(context.Background(), "application/pdf", []byte("x")); err == nil {
		t.Error("expected error on empty thumbnail")
	}
}
