package preview

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medialib/internal/model"
	"medialib/internal/storage"
	storeMocks "medialib/internal/storage/mocks"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestRenderer_Thumbnail(t *testing.T) {
	ctx := context.Background()
	photo := model.MediaItem{ID: "i1", MimeType: "image/png", FilePath: "u1/photo.png"}

	t.Run("downscales wide images", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("Get", ctx, "u1/photo.png").
			Return(io.NopCloser(bytes.NewReader(pngOf(t, 640, 320))), storage.ObjectInfo{}, nil)
		r := NewRenderer(mStore, nil, 1200, nil)

		out, err := r.Thumbnail(ctx, photo, 160)

		require.NoError(t, err)
		img, err := imaging.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 160, img.Bounds().Dx())
		assert.Equal(t, 80, img.Bounds().Dy())
		mStore.AssertExpectations(t)
	})

	t.Run("never upscales", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("Get", ctx, "u1/photo.png").
			Return(io.NopCloser(bytes.NewReader(pngOf(t, 100, 50))), storage.ObjectInfo{}, nil)
		r := NewRenderer(mStore, nil, 1200, nil)

		out, err := r.Thumbnail(ctx, photo, 0)

		require.NoError(t, err)
		img, err := imaging.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 100, img.Bounds().Dx())
	})

	t.Run("not an image", func(t *testing.T) {
		r := NewRenderer(new(storeMocks.MockStorage), nil, 0, nil)
		_, err := r.Thumbnail(ctx, model.MediaItem{MimeType: "audio/mpeg"}, 100)
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("storage error", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("Get", ctx, "u1/photo.png").Return(nil, storage.ObjectInfo{}, errors.New("no such key"))
		r := NewRenderer(mStore, nil, 0, nil)

		_, err := r.Thumbnail(ctx, photo, 100)

		assert.EqualError(t, err, "get object: no such key")
	})

	t.Run("corrupt bytes", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("Get", ctx, "u1/photo.png").
			Return(io.NopCloser(bytes.NewReader([]byte("not a png"))), storage.ObjectInfo{}, nil)
		r := NewRenderer(mStore, nil, 0, nil)

		_, err := r.Thumbnail(ctx, photo, 100)

		assert.ErrorContains(t, err, "decode image")
	})
}
