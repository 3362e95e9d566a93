package core

import "time"

// Credential is the result of a successful issuance.
type Credential struct {
	// Provider is the provider that signed the token.
	Provider ProviderID `json:"provider"`

	// Token is the signed artifact handed to the client SDK.
	// An opaque "006..." string for Agora and a JWT for Twilio and Zoom.
	Token string `json:"token"`

	// ExpiresAt is the expiry embedded in the signed claims.
	// It is not tracked after issuance.
	ExpiresAt time.Time `json:"expires_at"`

	// Metadata contains non-secret values the client needs next to the token
	// (e.g. "appId" for Agora). Keys are serialized as-is in the HTTP response.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Body returns the provider-specific response object: the token plus metadata, flattened.
func (c *Credential) Body() map[string]any {
	body := make(map[string]any, len(c.Metadata)+1)
	for k, v := range c.Metadata {
		body[k] = v
	}
	body["token"] = c.Token
	return body
}

// Clock returns the current time. Strategies receive it by parameter so that
// issuance is a pure function of input, secrets and time.
type Clock func() time.Time

// Fingerprinter derives a non-reversible identifier for a token, safe to log.
type Fingerprinter func(token string) string
