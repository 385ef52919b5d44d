package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"

	"medialib/internal/library"
	"medialib/internal/model"
)

var ErrNotImage = errors.New("item is not an image")

const thumbnailQuality = 80

// Thumbnail decodes an image item from storage and returns it as a JPEG no
// wider than the capped width. Smaller images are not upscaled.
func (r *Renderer) Thumbnail(ctx context.Context, item model.MediaItem, width int) ([]byte, error) {
	if library.ClassifyItem(item) != library.KindImage {
		return nil, ErrNotImage
	}

	rc, _, err := r.store.Get(ctx, item.FilePath)
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer rc.Close()

	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if w := r.capWidth(width); img.Bounds().Dx() > w {
		img = imaging.Resize(img, w, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
