package client

import (
	"sync"
)

// Location is where a Credential is attached to outgoing requests.
type Location int

const (
	// LocationQuery sends the credential as a query parameter.
	LocationQuery Location = iota
	// LocationHeader sends the credential as a header.
	LocationHeader
)

func (l Location) String() string {
	if l == LocationHeader {
		return "header"
	}
	return "query"
}

// DefaultCredentialKey is used when NewCredential is given an empty key.
const DefaultCredentialKey = "api_key"

// Credential is the client's single authentication slot. Its value can be
// rotated at any time, e.g. after an OAuth refresh, and the new value is
// read by the next request built. Requests already built are unaffected.
type Credential struct {
	location Location
	key      string
	prefix   string

	mu    sync.RWMutex
	value string
}

// NewCredential returns a Credential sent at loc under key.
func NewCredential(loc Location, key, value string) *Credential {
	if key == "" {
		key = DefaultCredentialKey
	}

	return &Credential{
		location: loc,
		key:      key,
		value:    value,
	}
}

// NewBearer returns a header Credential sending "Authorization: Bearer <token>".
// Update takes the bare token.
func NewBearer(token string) *Credential {
	return &Credential{
		location: LocationHeader,
		key:      "Authorization",
		prefix:   "Bearer ",
		value:    token,
	}
}

// Location returns where the credential is sent by default.
func (c *Credential) Location() Location { return c.location }

// Key returns the header name or query parameter name.
func (c *Credential) Key() string { return c.key }

// Value returns the current value as it is sent on the wire.
func (c *Credential) Value() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.prefix + c.value
}

// Update replaces the credential value.
func (c *Credential) Update(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
}
