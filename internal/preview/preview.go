// Package preview decides how a media item is shown and produces thumbnails.
package preview

import (
	"bytes"
	"context"
	"errors"

	"go.uber.org/zap"

	"medialib/internal/library"
	"medialib/internal/model"
	"medialib/internal/storage"
)

// Viewer names the widget a client uses to show an item.
type Viewer string

const (
	ViewerImage    Viewer = "image"
	ViewerAudio    Viewer = "audio"
	ViewerVideo    Viewer = "video"
	ViewerPDF      Viewer = "pdf"
	ViewerExternal Viewer = "external"
	ViewerNone     Viewer = "none"
)

const (
	DefaultMaxWidth = 1200

	msgNoFile      = "no file available"
	msgPDFFallback = "preview unavailable, open in new tab"
)

var pdfMagic = []byte("%PDF-")

var ErrNotPDF = errors.New("content is not a pdf")

// Preview describes how to render one item.
type Preview struct {
	ItemID      string       `json:"item_id"`
	Kind        library.Kind `json:"kind"`
	Viewer      Viewer       `json:"viewer"`
	State       State        `json:"state"`
	URL         string       `json:"url,omitempty"`
	Width       int          `json:"width,omitempty"`
	Page        int          `json:"page,omitempty"`
	FallbackURL string       `json:"fallback_url,omitempty"`
	Message     string       `json:"message,omitempty"`
}

// Prober fetches the first bytes of a remote object.
type Prober interface {
	Probe(ctx context.Context, url string) ([]byte, error)
}

// Previewer is the preview surface consumed by the HTTP layer.
type Previewer interface {
	Render(ctx context.Context, item model.MediaItem, viewportWidth int) Preview
	Thumbnail(ctx context.Context, item model.MediaItem, width int) ([]byte, error)
}

// Renderer builds previews and thumbnails. It is safe for concurrent use.
type Renderer struct {
	store    storage.Storage
	prober   Prober
	maxWidth int
	logger   *zap.Logger
}

// NewRenderer constructs a Renderer. maxWidth <= 0 selects DefaultMaxWidth.
func NewRenderer(store storage.Storage, prober Prober, maxWidth int, logger *zap.Logger) *Renderer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{store: store, prober: prober, maxWidth: maxWidth, logger: logger}
}

var _ Previewer = (*Renderer)(nil)

// Render resolves the preview of item for a client viewport. Failures are
// reported in the returned Preview, never as an error. The returned State is
// always terminal: Rendered or Errored.
func (r *Renderer) Render(ctx context.Context, item model.MediaItem, viewportWidth int) Preview {
	kind := library.ClassifyItem(item)
	p := Preview{ItemID: item.ID, Kind: kind, State: StateRendered}

	if item.FileURL == "" {
		p.Viewer = ViewerNone
		p.Message = msgNoFile
		return p
	}

	p.URL = item.FileURL
	switch kind {
	case library.KindImage:
		p.Viewer = ViewerImage
		p.Width = r.capWidth(viewportWidth)
	case library.KindAudio:
		p.Viewer = ViewerAudio
	case library.KindVideo:
		p.Viewer = ViewerVideo
	case library.KindPDF:
		p.Viewer = ViewerPDF
		p.Width = r.capWidth(viewportWidth)
		if err := r.probePDF(ctx, item.FileURL); err != nil {
			r.logger.Warn("pdf preview failed",
				zap.String("id", item.ID),
				zap.String("url", item.FileURL),
				zap.Error(err),
			)
			p.State = StateErrored
			p.FallbackURL = item.FileURL
			p.Message = msgPDFFallback
			return p
		}
		p.Page = 1
	default:
		p.Viewer = ViewerExternal
	}

	return p
}

func (r *Renderer) probePDF(ctx context.Context, url string) error {
	if r.prober == nil {
		return errors.New("no prober configured")
	}
	head, err := r.prober.Probe(ctx, url)
	if err != nil {
		return err
	}
	if !bytes.HasPrefix(head, pdfMagic) {
		return ErrNotPDF
	}
	return nil
}

func (r *Renderer) capWidth(w int) int {
	if w <= 0 || w > r.maxWidth {
		return r.maxWidth
	}
	return w
}
