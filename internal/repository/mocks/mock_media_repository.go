package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medialib/internal/model"
	"medialib/internal/repository"
)

type MockMediaRepository struct {
	mock.Mock
}

func (m *MockMediaRepository) Create(ctx context.Context, item *model.MediaItem) (*model.MediaItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if f, ok := args.Get(0).(func(*model.MediaItem) *model.MediaItem); ok {
		return f(item), args.Error(1)
	}
	return args.Get(0).(*model.MediaItem), args.Error(1)
}

func (m *MockMediaRepository) FindByID(ctx context.Context, id string) (*model.MediaItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MediaItem), args.Error(1)
}

func (m *MockMediaRepository) List(ctx context.Context, f repository.ListFilter) ([]model.MediaItem, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MediaItem), args.Error(1)
}

func (m *MockMediaRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	args := m.Called(ctx, id, favorite)
	return args.Error(0)
}

func (m *MockMediaRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	args := m.Called(ctx, id, deleted)
	return args.Error(0)
}

func (m *MockMediaRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
