package library

import (
	"strings"

	"medialib/internal/model"
)

// Kind is the content family used to choose an icon and a preview viewer.
type Kind string

const (
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindVideo    Kind = "video"
	KindPDF      Kind = "pdf"
	KindDocument Kind = "document"
	KindOther    Kind = "other"
)

// Filter tabs that are not kinds themselves.
const (
	FilterAll       = "all"
	FilterDocuments = "documents"
)

// Classify maps a MIME type to a Kind. When mimeType is empty the fallback
// category is used verbatim, or KindOther if that is empty too.
func Classify(mimeType, fallbackCategory string) Kind {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	if m == "" {
		if fallbackCategory != "" {
			return Kind(fallbackCategory)
		}
		return KindOther
	}

	switch {
	case strings.HasPrefix(m, "image/"):
		return KindImage
	case strings.HasPrefix(m, "audio/"):
		return KindAudio
	case strings.HasPrefix(m, "video/"):
		return KindVideo
	case strings.Contains(m, "pdf"):
		return KindPDF
	case strings.Contains(m, "msword"), strings.Contains(m, "officedocument"):
		return KindDocument
	default:
		return KindOther
	}
}

// ClassifyItem classifies an item by its MIME type, falling back to its category.
func ClassifyItem(it model.MediaItem) Kind {
	return Classify(it.MimeType, it.Category)
}

// IsDocumentFamily reports whether a MIME type belongs under the documents tab.
func IsDocumentFamily(mimeType string) bool {
	switch Classify(mimeType, "") {
	case KindPDF, KindDocument:
		return true
	}
	return false
}
