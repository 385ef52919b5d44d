package mocks

import (
	"context"

	"medialib/internal/model"
	"medialib/internal/preview"
	"github.com/stretchr/testify/mock"
)

type MockPreviewer struct {
	mock.Mock
}

func (m *MockPreviewer) Render(ctx context.Context, item model.MediaItem, viewportWidth int) preview.Preview {
	args := m.Called(ctx, item, viewportWidth)
	return args.Get(0).(preview.Preview)
}

func (m *MockPreviewer) Thumbnail(ctx context.Context, item model.MediaItem, width int) ([]byte, error) {
	args := m.Called(ctx, item, width)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
