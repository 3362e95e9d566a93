package assets

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by stores for objects that are absent.
var ErrNotExist = errors.New("asset does not exist")

// ErrOutsideBase is returned when a resolved name would leave the store's base.
var ErrOutsideBase = errors.New("resolved path is outside of the base")

// Store provides read-only access to the objects of one asset class.
// Names passed to a Store have already been validated against the allow-list.
type Store interface {
	// Size returns the length of the named object in bytes.
	Size(ctx context.Context, name string) (int64, error)

	// Open returns a reader for length bytes starting at offset.
	Open(ctx context.Context, name string, offset, length int64) (io.ReadCloser, error)

	// String describes the store for logs.
	String() string
}

// ctxReader stops reading once ctx is done, e.g. when the client disconnected.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

type readCloser struct {
	io.Reader
	io.Closer
}
