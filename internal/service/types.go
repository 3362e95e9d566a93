package service

import "github.com/darmiel/rtcmint/internal/core"

type IssueRequest struct {
	// Provider selects the strategy.
	Provider core.ProviderID

	// Payload is the decoded JSON request body. Its shape depends on the provider.
	Payload map[string]any
}
