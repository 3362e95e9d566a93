package core

import (
	"fmt"
	"strings"
)

// ProviderID identifies which signing strategy applies to an issuance request.
// The set of providers is closed; ParseProviderID rejects everything else.
type ProviderID string

const (
	ProviderAgora  ProviderID = "agora"
	ProviderTwilio ProviderID = "twilio"
	ProviderZoom   ProviderID = "zoom"
)

// legacyRouteSuffix is accepted for callers still using the old "/api/agora-token" style routes.
const legacyRouteSuffix = "-token"

// Providers returns all supported providers in a stable order.
func Providers() []ProviderID {
	return []ProviderID{ProviderAgora, ProviderTwilio, ProviderZoom}
}

// ParseProviderID resolves a route value to a ProviderID.
func ParseProviderID(s string) (ProviderID, error) {
	id := ProviderID(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), legacyRouteSuffix))
	switch id {
	case ProviderAgora, ProviderTwilio, ProviderZoom:
		return id, nil
	default:
		return "", NotFound("Unsupported provider", fmt.Errorf("unknown provider %q", s))
	}
}

func (p ProviderID) String() string {
	return string(p)
}
