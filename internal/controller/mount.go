package controller

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/birthday-dashboard/internal/config"
)

// Fragment is the rendered content of a mount and its metadata for HTTP caching.
type Fragment struct {
	Data         []byte
	ETag         string
	LastModified string // RFC1123, as required by HTTP headers
}

// Mount is one container of the page. Readers never block: a render swaps the
// whole fragment, so concurrent loads resolve last-writer-wins.
type Mount struct {
	name string
	frag atomic.Pointer[Fragment]
}

func newMount(name string) *Mount {
	return &Mount{name: name}
}

// Name returns the mount identifier used in /fragments/{mount}.
func (m *Mount) Name() string {
	return m.name
}

// Render replaces the mount content with html.
func (m *Mount) Render(html string) {
	m.RenderBytes([]byte(html))
}

// RenderBytes replaces the mount content with data.
func (m *Mount) RenderBytes(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	m.frag.Store(&Fragment{
		Data:         data,
		ETag:         etag,
		LastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgMountRendered,
		config.LogKeyComponent, config.CompController,
		config.LogKeyMount, m.name,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// Load returns the current fragment, or nil before the first render.
func (m *Mount) Load() *Fragment {
	return m.frag.Load()
}

// HTML returns the current content as a string; empty before the first render.
func (m *Mount) HTML() string {
	if f := m.frag.Load(); f != nil {
		return string(f.Data)
	}
	return ""
}
