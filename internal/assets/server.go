// Package assets serves provider SDK binaries (WASM modules, MP4 clips) with
// single-range partial content support.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/rtcmint/internal/core"
)

const (
	ClassWasm  = "wasm"
	ClassVideo = "video"

	DefaultCacheControl = "public, max-age=3600"
)

// Class is a fixed asset directory with its required extension and media type.
type Class struct {
	Name         string
	Extension    string
	ContentType  string
	CacheControl string
	Store        Store
}

// WasmClass returns the class for .wasm modules.
func WasmClass(store Store) Class {
	return Class{
		Name:         ClassWasm,
		Extension:    ".wasm",
		ContentType:  "application/wasm",
		CacheControl: DefaultCacheControl,
		Store:        store,
	}
}

// VideoClass returns the class for .mp4 clips.
func VideoClass(store Store) Class {
	return Class{
		Name:         ClassVideo,
		Extension:    ".mp4",
		ContentType:  "video/mp4",
		CacheControl: DefaultCacheControl,
		Store:        store,
	}
}

// Response describes a full or partial asset response. The caller writes it and
// must close Body.
type Response struct {
	Status        int
	Header        http.Header
	ContentLength int64
	Body          io.ReadCloser
}

// Server resolves asset requests. It holds only read-only state.
type Server struct {
	classes map[string]Class
}

func NewServer(classes ...Class) *Server {
	m := make(map[string]Class, len(classes))
	for _, c := range classes {
		m[c.Name] = c
	}
	return &Server{classes: m}
}

// Classes returns the configured class names.
func (s *Server) Classes() []string {
	names := make([]string, 0, len(s.classes))
	for name := range s.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serve validates filename, looks up the object and returns the full body, or the
// slice selected by rangeHeader when it is not empty.
func (s *Server) Serve(ctx context.Context, class, filename, rangeHeader string) (*Response, error) {
	c, ok := s.classes[class]
	if !ok {
		return nil, core.NotFound("Not found", fmt.Errorf("unknown asset class %q", class))
	}
	if err := ValidateFilename(filename, c.Extension); err != nil {
		return nil, err
	}

	logger := log.Ctx(ctx).With().Str("class", c.Name).Str("file", filename).Logger()

	size, err := c.Store.Size(ctx, filename)
	if err != nil {
		logger.Debug().Err(err).Str("store", c.Store.String()).Msg("asset lookup failed")
		return nil, core.NotFound("Not found", err)
	}

	header := http.Header{}
	header.Set("Content-Type", c.ContentType)
	header.Set("Accept-Ranges", "bytes")
	if c.CacheControl != "" {
		header.Set("Cache-Control", c.CacheControl)
	}

	status := http.StatusOK
	offset, length := int64(0), size
	if rangeHeader != "" {
		br, err := ParseRange(rangeHeader, size)
		if err != nil {
			return nil, err
		}
		status = http.StatusPartialContent
		offset, length = br.Start, br.Length()
		header.Set("Content-Range", br.ContentRange(size))
	}
	header.Set("Content-Length", strconv.FormatInt(length, 10))

	body, err := c.Store.Open(ctx, filename, offset, length)
	if err != nil {
		logger.Debug().Err(err).Str("store", c.Store.String()).Msg("asset open failed")
		return nil, core.NotFound("Not found", err)
	}

	return &Response{
		Status:        status,
		Header:        header,
		ContentLength: length,
		Body:          body,
	}, nil
}
