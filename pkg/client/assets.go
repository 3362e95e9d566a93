package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/darmiel/rtcmint/internal/api"
)

// Asset is a streamed asset response. Body must be closed.
type Asset struct {
	StatusCode    int
	ContentType   string
	ContentLength int64
	ContentRange  string
	CorrelationID string
	Body          io.ReadCloser
}

// FetchAsset downloads an asset of class ("wasm" or "video"). A non-empty rangeHeader
// (e.g. "bytes=0-1023") requests a single range.
func (c *Client) FetchAsset(ctx context.Context, class, filename, rangeHeader string) (*Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url().
		setPath(api.AssetRoute).
		setPathParam("class", class).
		setPathParam("filename", filename).
		build(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w", class, filename, err)
	}
	return &Asset{
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		ContentRange:  resp.Header.Get("Content-Range"),
		CorrelationID: correlationFromResponse(resp),
		Body:          resp.Body,
	}, nil
}
