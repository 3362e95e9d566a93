package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/darmiel/rtcmint/internal/config"
	"github.com/darmiel/rtcmint/internal/secrets"
	"github.com/darmiel/rtcmint/internal/service"
	"github.com/darmiel/rtcmint/pkg/client"
)

type Factory struct {
	// RemoteAddr is the address of the rtcmint server to connect to.
	RemoteAddr string

	// ConfigPath is the server YAML configuration. Empty means config.Default().
	ConfigPath string
}

func NewFactory() *Factory {
	return &Factory{}
}

// Remote reports whether commands should talk to a server instead of working locally.
func (f *Factory) Remote() bool {
	return f.RemoteAddr != ""
}

// GetClient returns an HTTP client for remote operations.
func (f *Factory) GetClient() (*client.Client, error) {
	if f.RemoteAddr == "" {
		return nil, fmt.Errorf("server address not configured (use --server or set RTCMINT_SERVER)")
	}
	return client.New(f.RemoteAddr), nil
}

func (f *Factory) LoadConfig() (*config.Config, error) {
	if f.ConfigPath == "" {
		log.Debug().Msg("no config file given, using defaults")
		return config.Default(), nil
	}
	return config.Load(f.ConfigPath)
}

// LoadSecrets resolves the provider secrets once, from the environment or the
// "secrets" section of the user config.
func (f *Factory) LoadSecrets() *secrets.Bundle {
	names := secrets.Names()
	return secrets.Load(secrets.NewViperResolver(viper.GetViper(), names...), names...)
}

// GetLocalService returns a token service using the locally resolved secrets.
func (f *Factory) GetLocalService(_ context.Context) *service.TokenService {
	return service.NewTokenService(f.LoadSecrets())
}
