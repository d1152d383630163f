/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package config

// AccessConfig tunes the access core. The embedding server fills it in
// from its own configuration; defaults are safe for production.
type AccessConfig struct {
	// CacheTTLSeconds bounds how long a resolved session snapshot may
	// be served without recomputation.
	CacheTTLSeconds int `json:"cache-ttl-seconds"`

	// CacheMaxEntries bounds the number of cached snapshots.
	CacheMaxEntries int `json:"cache-max-entries"`

	// PartialRevokes enables revoking at a narrower scope than the
	// grant, MySQL partial_revokes style.
	PartialRevokes bool `json:"partial-revokes"`
}

// DefaultAccessConfig returns the default access configuration.
func DefaultAccessConfig() *AccessConfig {
	return &AccessConfig{
		CacheTTLSeconds: 60,
		CacheMaxEntries: 1024,
		PartialRevokes:  true,
	}
}
