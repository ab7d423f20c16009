package mirror

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/BailinYe/resume-modifier/internal/config"
)

// ========== 放置策略测试 ==========

// mockAPI DocumentAPI 的 mock，未设置的方法返回零值
type mockAPI struct {
	uploadFn       func(ctx context.Context, name, parentID, contentType string, r io.Reader) (string, error)
	convertFn      func(ctx context.Context, fileID string) (string, error)
	shareFn        func(ctx context.Context, id, recipient, role string) error
	ensureFolderFn func(ctx context.Context, parentID, name string) (string, error)

	uploadCalls []string // 每次 Upload 的 parentID
}

func (m *mockAPI) Upload(ctx context.Context, name, parentID, contentType string, r io.Reader) (string, error) {
	m.uploadCalls = append(m.uploadCalls, parentID)
	if m.uploadFn != nil {
		return m.uploadFn(ctx, name, parentID, contentType, r)
	}
	return "file-id", nil
}

func (m *mockAPI) Convert(ctx context.Context, fileID string) (string, error) {
	if m.convertFn != nil {
		return m.convertFn(ctx, fileID)
	}
	return "doc-id", nil
}

func (m *mockAPI) Share(ctx context.Context, id, recipient, role string) error {
	if m.shareFn != nil {
		return m.shareFn(ctx, id, recipient, role)
	}
	return nil
}

func (m *mockAPI) EnsureFolder(ctx context.Context, parentID, name string) (string, error) {
	if m.ensureFolderFn != nil {
		return m.ensureFolderFn(ctx, parentID, name)
	}
	return "folder-id", nil
}

func testRequest() *Request {
	return &Request{
		OwnerID:     "owner-1",
		FileName:    "Resume.pdf",
		ContentType: "application/pdf",
		Data:        []byte("content"),
	}
}

func newTestPlacer(api DocumentAPI, strategies []Strategy) *Placer {
	p := NewPlacer(api, strategies, 3)
	p.retryDelay = time.Millisecond
	return p
}

func TestPlaceFirstStrategyWins(t *testing.T) {
	api := &mockAPI{}
	p := newTestPlacer(api, []Strategy{
		&teamFolderStrategy{folderID: "team-1"},
		&rootStrategy{},
	})

	fileID, strategy, err := p.Place(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Place() error: %v", err)
	}
	if fileID != "file-id" {
		t.Errorf("fileID = %q", fileID)
	}
	if strategy != "team-folder" {
		t.Errorf("strategy = %q, want team-folder", strategy)
	}
	if len(api.uploadCalls) != 1 || api.uploadCalls[0] != "team-1" {
		t.Errorf("uploadCalls = %v, want [team-1]", api.uploadCalls)
	}
}

func TestPlaceFallsThroughOnPlacementError(t *testing.T) {
	// 团队目录无权限 → 切自有目录
	api := &mockAPI{
		uploadFn: func(ctx context.Context, name, parentID, contentType string, r io.Reader) (string, error) {
			if parentID == "team-1" {
				return "", &PlacementError{Code: "permission", Err: errors.New("forbidden")}
			}
			return "file-own", nil
		},
	}
	p := newTestPlacer(api, []Strategy{
		&teamFolderStrategy{folderID: "team-1"},
		&ownFolderStrategy{folderID: "own-1"},
	})

	fileID, strategy, err := p.Place(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Place() error: %v", err)
	}
	if strategy != "own-folder" || fileID != "file-own" {
		t.Errorf("strategy = %q fileID = %q, want own-folder/file-own", strategy, fileID)
	}
	// 放置类错误不在同一策略内重试
	if len(api.uploadCalls) != 2 {
		t.Errorf("uploadCalls = %v, want exactly one try per strategy", api.uploadCalls)
	}
}

func TestPlaceRetriesTransientWithinStrategy(t *testing.T) {
	attempts := 0
	api := &mockAPI{
		uploadFn: func(ctx context.Context, name, parentID, contentType string, r io.Reader) (string, error) {
			attempts++
			if attempts < 3 {
				return "", &TransientError{Err: errors.New("timeout")}
			}
			return "file-id", nil
		},
	}
	p := newTestPlacer(api, []Strategy{&rootStrategy{}})

	_, strategy, err := p.Place(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Place() error: %v", err)
	}
	if strategy != "root" {
		t.Errorf("strategy = %q, want root", strategy)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestPlaceAllStrategiesExhausted(t *testing.T) {
	api := &mockAPI{
		uploadFn: func(ctx context.Context, name, parentID, contentType string, r io.Reader) (string, error) {
			return "", &PlacementError{Code: "quota", Err: errors.New("storage full")}
		},
	}
	p := newTestPlacer(api, []Strategy{
		&teamFolderStrategy{folderID: "team-1"},
		&rootStrategy{},
	})

	_, _, err := p.Place(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error when every strategy fails")
	}
}

func TestManagedParentProvisionsOwnerFolder(t *testing.T) {
	var ensuredParent, ensuredName string
	api := &mockAPI{
		ensureFolderFn: func(ctx context.Context, parentID, name string) (string, error) {
			ensuredParent, ensuredName = parentID, name
			return "owner-folder", nil
		},
	}
	p := newTestPlacer(api, []Strategy{&managedParentStrategy{parentID: "parent-1"}})

	_, _, err := p.Place(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Place() error: %v", err)
	}
	if ensuredParent != "parent-1" || ensuredName != "owner-1" {
		t.Errorf("EnsureFolder(%q, %q), want (parent-1, owner-1)", ensuredParent, ensuredName)
	}
	if len(api.uploadCalls) != 1 || api.uploadCalls[0] != "owner-folder" {
		t.Errorf("uploadCalls = %v, want [owner-folder]", api.uploadCalls)
	}
}

// ========== 镜像服务测试 ==========

func mirrorConfig() *config.MirrorConfig {
	return &config.MirrorConfig{
		Enabled:        true,
		Convert:        true,
		ShareWith:      "reviewer@example.com",
		ShareRole:      "reader",
		MaxRetries:     1,
		TimeoutSeconds: 5,
	}
}

func TestMirrorConvertAndShareAreBestEffort(t *testing.T) {
	api := &mockAPI{
		convertFn: func(ctx context.Context, fileID string) (string, error) {
			return "", errors.New("conversion unsupported")
		},
		shareFn: func(ctx context.Context, id, recipient, role string) error {
			return errors.New("recipient not found")
		},
	}
	svc := NewService(api, mirrorConfig())

	result, err := svc.Mirror(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Mirror() error: %v (convert/share failures must not fail the mirror)", err)
	}
	if result.RemoteFileID != "file-id" {
		t.Errorf("RemoteFileID = %q", result.RemoteFileID)
	}
	if result.RemoteDocID != "" {
		t.Errorf("RemoteDocID = %q, want empty after failed conversion", result.RemoteDocID)
	}
	if result.Shared {
		t.Error("Shared = true, want false after failed share")
	}
	if len(result.Warnings) != 2 {
		t.Errorf("Warnings = %v, want one per failed sub-step", result.Warnings)
	}
}

func TestMirrorSharesConvertedDocument(t *testing.T) {
	var sharedID string
	api := &mockAPI{
		shareFn: func(ctx context.Context, id, recipient, role string) error {
			sharedID = id
			return nil
		},
	}
	svc := NewService(api, mirrorConfig())

	result, err := svc.Mirror(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Mirror() error: %v", err)
	}
	// 转换成功时共享可编辑文档而非原始文件
	if sharedID != "doc-id" {
		t.Errorf("shared id = %q, want doc-id", sharedID)
	}
	if !result.Shared {
		t.Error("Shared = false, want true")
	}
}

func TestMirrorPlacementFailureIsFatal(t *testing.T) {
	api := &mockAPI{
		uploadFn: func(ctx context.Context, name, parentID, contentType string, r io.Reader) (string, error) {
			return "", &PlacementError{Code: "quota", Err: errors.New("full")}
		},
	}
	svc := NewService(api, mirrorConfig())

	if _, err := svc.Mirror(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error when no placement succeeds")
	}
}
