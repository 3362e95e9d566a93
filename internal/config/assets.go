package config

import (
	"context"
	"fmt"

	"github.com/darmiel/rtcmint/internal/assets"
)

// Store builds the asset store described by s.
func (s *StoreConfig) Store(ctx context.Context) (assets.Store, error) {
	switch s.Type {
	case StoreTypeDir:
		return assets.NewDirStore(s.Dir)
	case StoreTypeS3:
		return assets.NewS3StoreFromEnv(ctx, s.Bucket, s.Prefix, assets.S3Options{
			Region:       s.Region,
			Endpoint:     s.Endpoint,
			UsePathStyle: s.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown store type %q", s.Type)
	}
}

// BuildServer creates the stores of every configured class.
func (c *AssetsConfig) BuildServer(ctx context.Context) (*assets.Server, error) {
	var classes []assets.Class

	if c.Wasm != nil {
		store, err := c.Wasm.Store(ctx)
		if err != nil {
			return nil, fmt.Errorf("building %s store: %w", assets.ClassWasm, err)
		}
		classes = append(classes, assets.WasmClass(store))
	}
	if c.Video != nil {
		store, err := c.Video.Store(ctx)
		if err != nil {
			return nil, fmt.Errorf("building %s store: %w", assets.ClassVideo, err)
		}
		classes = append(classes, assets.VideoClass(store))
	}

	for i := range classes {
		classes[i].CacheControl = c.CacheControl
	}
	return assets.NewServer(classes...), nil
}
