package model

import "time"

// AccessKey is a shared-secret credential for the gateway route. The secret
// itself is only ever held as a hash; callers see it once at issue/rotate time.
type AccessKey struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	KeyHash         string    `json:"-"`
	KeyPrefix       string    `json:"keyPrefix"`
	Enabled         bool      `json:"enabled"`
	RateLimitPerMin int       `json:"rateLimitPerMin"`
	CreatedAt       time.Time `json:"createdAt"`
}
