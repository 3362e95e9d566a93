package zoom

import "github.com/golang-jwt/jwt/v5"

type claim struct {
	name  string
	value any
}

// claimSet collects the token claims. Optional claims are only added when the caller
// supplied a value, so absent fields never appear in the token (not even as null).
// The signed payload is a JSON object with sorted keys.
type claimSet struct {
	claims []claim
}

func (c *claimSet) set(name string, value any) *claimSet {
	c.claims = append(c.claims, claim{name: name, value: value})
	return c
}

// setOptional adds the claim only when present is true.
func (c *claimSet) setOptional(name string, value any, present bool) *claimSet {
	if present {
		c.set(name, value)
	}
	return c
}

func (c *claimSet) MapClaims() jwt.MapClaims {
	m := make(jwt.MapClaims, len(c.claims))
	for _, cl := range c.claims {
		m[cl.name] = cl.value
	}
	return m
}
