// Package auth validates gateway credentials against issued access keys.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/mock-api-gateway/internal/model"
	"github.com/mock-api-gateway/internal/store"
)

// DefaultHeader carries the gateway credential.
const DefaultHeader = "X-Api-Key"

// ErrUnauthorized is returned for a missing, unknown or disabled key. The
// three cases are indistinguishable to the caller.
var ErrUnauthorized = errors.New("invalid or missing API key")

// Authenticator looks up presented secrets by hash.
type Authenticator struct {
	keys   store.APIKeyStore
	header string
}

// NewAuthenticator creates an authenticator reading the credential from
// header (DefaultHeader when empty).
func NewAuthenticator(keys store.APIKeyStore, header string) *Authenticator {
	if header == "" {
		header = DefaultHeader
	}
	return &Authenticator{keys: keys, header: header}
}

// Header returns the credential header name.
func (a *Authenticator) Header() string {
	return a.header
}

// Extract returns the presented credential from h, or "" when absent.
func (a *Authenticator) Extract(h http.Header) string {
	return strings.TrimSpace(h.Get(a.header))
}

// Authenticate returns the enabled key whose secret equals presented.
func (a *Authenticator) Authenticate(ctx context.Context, presented string) (*model.AccessKey, error) {
	if presented == "" {
		return nil, ErrUnauthorized
	}

	key, err := a.keys.GetAPIKeyByHash(ctx, SHA256Hex(presented))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !key.Enabled {
		return nil, ErrUnauthorized
	}
	return key, nil
}

// SHA256Hex returns the hex-encoded SHA-256 hash of the input.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}
