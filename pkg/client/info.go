package client

import (
	"context"

	"github.com/darmiel/rtcmint/internal/api"
	"github.com/darmiel/rtcmint/internal/buildinfo"
)

// Info returns the build info and enabled providers of the server.
func (c *Client) Info(ctx context.Context) (*buildinfo.Info, string, error) {
	var info buildinfo.Info
	correlation, err := c.get(ctx, c.url().
		setPath(api.AboutRoute).
		build(), &info)
	if err != nil {
		return nil, correlation, err
	}
	return &info, correlation, nil
}
