// Package fingerprint derives log-safe identifiers for issued tokens.
package fingerprint

import (
	"crypto/sha256"
	"encoding/base64"
	"sort"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darmiel/rtcmint/internal/core"
)

const (
	// SHA256Type hashes the whole token.
	SHA256Type = "sha256"
	// JTIType uses the "jti" claim of a JWT and falls back to SHA256Type.
	JTIType = "jti"
)

var registry = map[string]core.Fingerprinter{
	SHA256Type: sha256Fingerprint,
	JTIType:    jtiFingerprint,
}

// providerTypes maps providers to the fingerprint type used in logs.
var providerTypes = map[core.ProviderID]string{
	core.ProviderAgora:  SHA256Type,
	core.ProviderTwilio: JTIType,
	core.ProviderZoom:   SHA256Type,
}

// Calculate returns the fingerprint of token using the given type, or SHA256Type when unknown.
func Calculate(typ, token string) string {
	fn, ok := registry[typ]
	if !ok {
		fn = registry[SHA256Type]
	}
	return fn(token)
}

// ForProvider returns the fingerprint of a token issued by the provider.
func ForProvider(provider core.ProviderID, token string) string {
	return Calculate(providerTypes[provider], token)
}

// Types lists the registered fingerprint types.
func Types() []string {
	types := make([]string, 0, len(registry))
	for k := range registry {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

func sha256Fingerprint(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(hash[:])
}

func jtiFingerprint(token string) string {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ID == "" {
		return sha256Fingerprint(token)
	}
	return claims.ID
}
