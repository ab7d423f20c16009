package file

import (
	"context"
	"errors"
	"io"

	"github.com/BailinYe/resume-modifier/internal/model"
)

// ========== Mock 实现 ==========

// mockFileRepo FileRepository 的 mock，未设置的方法返回零值
type mockFileRepo struct {
	createFn             func(*model.FileRecord) error
	getByIDFn            func(string) (*model.FileRecord, error)
	listByOwnerAndHashFn func(string, string) ([]*model.FileRecord, error)
	listByOwnerFn        func(string, int, int) ([]*model.FileRecord, int64, error)
	updateFn             func(*model.FileRecord) error
	updateFieldsFn       func(string, map[string]interface{}) error
	softDeleteFn         func(string, string) error
	deleteFn             func(string) error
}

func (m *mockFileRepo) Create(record *model.FileRecord) error {
	if m.createFn != nil {
		return m.createFn(record)
	}
	return nil
}

func (m *mockFileRepo) GetByID(id string) (*model.FileRecord, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return nil, errors.New("not found")
}

func (m *mockFileRepo) ListByOwnerAndHash(ownerID, hash string) ([]*model.FileRecord, error) {
	if m.listByOwnerAndHashFn != nil {
		return m.listByOwnerAndHashFn(ownerID, hash)
	}
	return nil, nil
}

func (m *mockFileRepo) ListByOwner(ownerID string, offset, limit int) ([]*model.FileRecord, int64, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ownerID, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockFileRepo) Update(record *model.FileRecord) error {
	if m.updateFn != nil {
		return m.updateFn(record)
	}
	return nil
}

func (m *mockFileRepo) UpdateFields(id string, fields map[string]interface{}) error {
	if m.updateFieldsFn != nil {
		return m.updateFieldsFn(id, fields)
	}
	return nil
}

func (m *mockFileRepo) SoftDelete(id, deletedBy string) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(id, deletedBy)
	}
	return nil
}

func (m *mockFileRepo) Delete(id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

// mockStorage Storage 后端的 mock
type mockStorage struct {
	storageType StorageType
	saveFn      func(context.Context, *SaveRequest) (string, error)
	getFn       func(context.Context, string) (io.ReadCloser, error)
	deleteFn    func(context.Context, string) error
	urlFn       func(string) string

	saveCalls   int
	deleteCalls int
}

func (m *mockStorage) Save(ctx context.Context, req *SaveRequest) (string, error) {
	m.saveCalls++
	if m.saveFn != nil {
		return m.saveFn(ctx, req)
	}
	return req.OwnerID + "/" + req.StorageKey, nil
}

func (m *mockStorage) Get(ctx context.Context, location string) (io.ReadCloser, error) {
	if m.getFn != nil {
		return m.getFn(ctx, location)
	}
	return nil, errors.New("not found")
}

func (m *mockStorage) Delete(ctx context.Context, location string) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, location)
	}
	return nil
}

func (m *mockStorage) GetURL(location string) string {
	if m.urlFn != nil {
		return m.urlFn(location)
	}
	return "http://example.com/" + location
}

func (m *mockStorage) Type() StorageType {
	if m.storageType != "" {
		return m.storageType
	}
	return StorageTypeLocal
}
