package mocks

import (
	"context"

	"medialib/internal/model"
	"medialib/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) UploadBatch(ctx context.Context, b *service.UploadBatch) (*service.UploadTally, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadTally), args.Error(1)
}

func (m *MockMediaService) UploadOne(ctx context.Context, ownerID, folder string, f service.UploadFile) (*model.MediaItem, error) {
	args := m.Called(ctx, ownerID, folder, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MediaItem), args.Error(1)
}

func (m *MockMediaService) Browse(ctx context.Context, q service.BrowseQuery) (*service.BrowseResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BrowseResult), args.Error(1)
}

func (m *MockMediaService) Get(ctx context.Context, id string) (*model.MediaItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MediaItem), args.Error(1)
}

func (m *MockMediaService) DownloadURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockMediaService) SetFavorite(ctx context.Context, id string, favorite bool) (*model.MediaItem, error) {
	args := m.Called(ctx, id, favorite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MediaItem), args.Error(1)
}

func (m *MockMediaService) Trash(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMediaService) Restore(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMediaService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
