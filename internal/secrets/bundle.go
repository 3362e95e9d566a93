package secrets

import (
	"sort"

	"github.com/darmiel/rtcmint/internal/core"
)

// Bundle is an immutable snapshot of resolved secrets.
// It is built once at startup and shared read-only between requests.
type Bundle struct {
	values map[string]Secret
}

// Load resolves every name through r. Unset names are simply absent from the bundle;
// strategies fail with a configuration error when they Require one of them.
func Load(r Resolver, names ...string) *Bundle {
	values := make(map[string]Secret, len(names))
	for _, name := range names {
		if v, ok := r.Lookup(name); ok {
			values[name] = Secret(v)
		}
	}
	return &Bundle{values: values}
}

// Get returns the secret and whether it is set.
func (b *Bundle) Get(name string) (Secret, bool) {
	if b == nil {
		return "", false
	}
	s, ok := b.values[name]
	return s, ok
}

// Require returns the secret or a configuration error naming (never revealing) it.
func (b *Bundle) Require(name string) (Secret, error) {
	s, ok := b.Get(name)
	if !ok {
		return "", core.Configuration(name + " is not configured")
	}
	return s, nil
}

// Present lists the names that resolved, sorted. Values are never exposed.
func (b *Bundle) Present() []string {
	if b == nil {
		return nil
	}
	names := make([]string, 0, len(b.values))
	for name := range b.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
