package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/rtcmint/internal/core"
	"github.com/darmiel/rtcmint/internal/fingerprint"
	"github.com/darmiel/rtcmint/internal/payload"
	"github.com/darmiel/rtcmint/internal/providers/agora"
	"github.com/darmiel/rtcmint/internal/providers/twilio"
	"github.com/darmiel/rtcmint/internal/providers/zoom"
	"github.com/darmiel/rtcmint/internal/secrets"
)

// MaxPayloadBytes caps the size of an issuance request body.
const MaxPayloadBytes = 64 << 10

// Strategy turns a decoded payload into a signed credential.
// Strategies are pure: they only depend on their arguments.
type Strategy func(payload map[string]any, bundle *secrets.Bundle, now core.Clock) (*core.Credential, error)

// StrategyFor returns the strategy of a provider.
func StrategyFor(id core.ProviderID) (Strategy, error) {
	switch id {
	case core.ProviderAgora:
		return agora.Issue, nil
	case core.ProviderTwilio:
		return twilio.Issue, nil
	case core.ProviderZoom:
		return zoom.Issue, nil
	default:
		return nil, core.NotFound("Unsupported provider", fmt.Errorf("no strategy for provider %q", id))
	}
}

// TokenService is the dispatcher that routes issuance requests to the provider strategies.
// It holds only read-only state and is safe for concurrent use.
type TokenService struct {
	secrets *secrets.Bundle
	clock   core.Clock
}

type Option func(*TokenService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock core.Clock) Option {
	return func(s *TokenService) { s.clock = clock }
}

func NewTokenService(bundle *secrets.Bundle, opts ...Option) *TokenService {
	s := &TokenService{
		secrets: bundle,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue resolves the provider, then reads and parses body and mints a credential.
// The body is not read at all when the provider is unknown.
func (s *TokenService) Issue(ctx context.Context, provider string, body io.Reader) (*core.Credential, error) {
	id, err := core.ParseProviderID(provider)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(io.LimitReader(body, MaxPayloadBytes+1))
	if err != nil {
		return nil, &core.Error{Kind: core.KindClientInput, Message: payload.InvalidJSONMessage, Err: err}
	}
	if len(raw) > MaxPayloadBytes {
		return nil, &core.Error{
			Kind:    core.KindClientInput,
			Message: payload.InvalidJSONMessage,
			Err:     errors.New("request body too large"),
		}
	}

	m, err := payload.Parse(raw)
	if err != nil {
		return nil, err
	}
	return s.IssuePayload(ctx, IssueRequest{Provider: id, Payload: m})
}

// IssuePayload mints a credential for an already decoded payload.
func (s *TokenService) IssuePayload(ctx context.Context, req IssueRequest) (*core.Credential, error) {
	logger := log.Ctx(ctx).With().Str("provider", req.Provider.String()).Logger()

	strategy, err := StrategyFor(req.Provider)
	if err != nil {
		return nil, err
	}

	cred, err := strategy(req.Payload, s.secrets, s.clock)
	if err != nil {
		logIssueError(&logger, err)
		return nil, err
	}

	logger.Info().
		Str("fingerprint", fingerprint.ForProvider(req.Provider, cred.Token)).
		Time("expires_at", cred.ExpiresAt).
		Msg("token issued")
	return cred, nil
}

// logIssueError logs the failure kind and message. Messages never contain secret values
// or payload contents, only field and configuration names.
func logIssueError(logger *zerolog.Logger, err error) {
	kind := core.KindOf(err)
	ev := logger.Warn()
	if kind == core.KindConfiguration || kind == core.KindInternal {
		ev = logger.Error()
	}
	ev.Str("kind", kind.String()).Err(err).Msg("token issuance failed")
}
