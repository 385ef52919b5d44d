package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProber_Probe(t *testing.T) {
	ranges := make(chan string, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ranges <- r.Header.Get("Range")
		switch r.URL.Path {
		case "/doc.pdf":
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write([]byte("%PDF-1.4" + strings.Repeat("x", 4096)))
		case "/full.pdf":
			_, _ = w.Write([]byte("%PDF-1.5"))
		default:
			http.Error(w, "forbidden", http.StatusForbidden)
		}
	}))
	defer srv.Close()

	p := NewHTTPProber(2 * time.Second)
	ctx := context.Background()

	t.Run("partial content", func(t *testing.T) {
		head, err := p.Probe(ctx, srv.URL+"/doc.pdf")
		require.NoError(t, err)
		assert.Len(t, head, probeBytes)
		assert.True(t, strings.HasPrefix(string(head), "%PDF-"))
		assert.Equal(t, "bytes=0-1023", <-ranges)
	})

	t.Run("server ignores range", func(t *testing.T) {
		head, err := p.Probe(ctx, srv.URL+"/full.pdf")
		<-ranges
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.5", string(head))
	})

	t.Run("forbidden", func(t *testing.T) {
		_, err := p.Probe(ctx, srv.URL+"/secret.pdf")
		<-ranges
		assert.ErrorIs(t, err, ErrUnreachable)
		assert.Contains(t, err.Error(), "status 403")
	})

	t.Run("connection refused", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		closed.Close()
		_, err := p.Probe(ctx, closed.URL+"/x.pdf")
		assert.ErrorIs(t, err, ErrUnreachable)
	})
}
