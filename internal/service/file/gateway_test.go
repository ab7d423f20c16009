package file

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

// ========== 存储网关测试 ==========

func testSaveRequest() *SaveRequest {
	data := []byte("content")
	return &SaveRequest{
		StorageKey:  "key-1",
		FileName:    "resume.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
		OwnerID:     "owner-1",
	}
}

func TestGatewayPutPrimarySucceeds(t *testing.T) {
	primary := &mockStorage{storageType: StorageTypeMinIO}
	fallback := &mockStorage{storageType: StorageTypeLocal}
	g := NewGateway(primary, fallback, time.Second)

	result, err := g.Put(context.Background(), testSaveRequest())
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if result.Backend != StorageTypeMinIO {
		t.Errorf("Backend = %s, want %s", result.Backend, StorageTypeMinIO)
	}
	if fallback.saveCalls != 0 {
		t.Error("fallback must not be touched when primary succeeds")
	}
}

func TestGatewayPutFallsBackOnConfigError(t *testing.T) {
	primary := &mockStorage{
		storageType: StorageTypeMinIO,
		saveFn: func(ctx context.Context, req *SaveRequest) (string, error) {
			return "", &ConfigError{Backend: "minio", Err: errors.New("bucket missing")}
		},
	}
	fallback := &mockStorage{storageType: StorageTypeLocal}
	g := NewGateway(primary, fallback, time.Second)

	result, err := g.Put(context.Background(), testSaveRequest())
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if result.Backend != StorageTypeLocal {
		t.Errorf("Backend = %s, want fallback %s", result.Backend, StorageTypeLocal)
	}
	if fallback.saveCalls != 1 {
		t.Errorf("fallback saveCalls = %d, want 1", fallback.saveCalls)
	}
}

func TestGatewayPutTransientErrorDoesNotFallBack(t *testing.T) {
	primary := &mockStorage{
		storageType: StorageTypeMinIO,
		saveFn: func(ctx context.Context, req *SaveRequest) (string, error) {
			return "", &TransientError{Err: errors.New("connection reset")}
		},
	}
	fallback := &mockStorage{storageType: StorageTypeLocal}
	g := NewGateway(primary, fallback, time.Second)

	_, err := g.Put(context.Background(), testSaveRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsTransientError(err) {
		t.Errorf("error = %v, want transient", err)
	}
	if fallback.saveCalls != 0 {
		t.Error("transient error must not trigger fallback")
	}
}

func TestGatewayPutNoFallbackConfigured(t *testing.T) {
	primary := &mockStorage{
		storageType: StorageTypeLocal,
		saveFn: func(ctx context.Context, req *SaveRequest) (string, error) {
			return "", &ConfigError{Backend: "local", Err: errors.New("disk full")}
		},
	}
	g := NewGateway(primary, nil, time.Second)

	_, err := g.Put(context.Background(), testSaveRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsConfigError(err) {
		t.Errorf("error = %v, want config error", err)
	}
}

func TestGatewayRoutesByBackendType(t *testing.T) {
	primary := &mockStorage{storageType: StorageTypeMinIO}
	fallback := &mockStorage{storageType: StorageTypeLocal}
	g := NewGateway(primary, fallback, time.Second)

	// 记录落在回退后端时，后续操作必须路由到同一后端
	if err := g.Delete(context.Background(), StorageTypeLocal, "owner-1/key-1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if fallback.deleteCalls != 1 {
		t.Errorf("fallback deleteCalls = %d, want 1", fallback.deleteCalls)
	}
	if primary.deleteCalls != 0 {
		t.Error("primary must not receive deletes for the fallback backend")
	}

	if _, err := g.Get(context.Background(), StorageType("s3"), "x"); err == nil {
		t.Error("expected error for unknown backend type")
	}
}
