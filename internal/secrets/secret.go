package secrets

const redacted = "[REDACTED]"

// Secret holds a sensitive string. It redacts itself in fmt output and in every
// text-based serialization, so it is safe to pass to a logger by accident.
// Value is the only accessor for the raw string.
type Secret string

func (s Secret) String() string { return redacted }

func (s Secret) GoString() string { return redacted }

func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// Value returns the raw secret. Use it only where the key material is consumed.
func (s Secret) Value() string { return string(s) }

// Bytes is Value as a byte slice, for HMAC keys.
func (s Secret) Bytes() []byte { return []byte(s) }
