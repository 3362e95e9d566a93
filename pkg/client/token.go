package client

import (
	"context"
	"fmt"

	"github.com/darmiel/rtcmint/internal/api"
)

// TokenResponse is the union of the provider response bodies. Fields a provider does not
// return stay empty.
type TokenResponse struct {
	Token string `json:"token"`

	// agora
	AppID string `json:"appId,omitempty"`

	// zoom
	ExpiresAt    int64  `json:"expiresAt,omitempty"`
	UserIdentity string `json:"userIdentity,omitempty"`
	SessionName  string `json:"sessionName,omitempty"`
	Role         *int   `json:"role,omitempty"`
}

// IssueToken requests a credential for provider (e.g. "agora") with the provider specific
// payload. It returns the response and the correlation id of the request.
func (c *Client) IssueToken(ctx context.Context, provider string, payload map[string]any) (*TokenResponse, string, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	var result TokenResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.IssueTokenRoute).
		setPathParam("provider", provider).
		build(), payload, &result)
	if err != nil {
		return nil, correlation, fmt.Errorf("issuing %s token: %w", provider, err)
	}
	return &result, correlation, nil
}
