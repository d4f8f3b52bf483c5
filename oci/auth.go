// Package oci fetches guest component artifacts from OCI registries and
// verifies their signatures.
package oci

import (
	"context"
	"os"
)

// AuthProvider retrieves registry credentials.
type AuthProvider interface {
	// GetCredentials returns (username, password, error) for a registry host.
	GetCredentials(ctx context.Context, registry string) (string, string, error)
}

// EnvAuthProvider reads credentials from CORRAL_REGISTRY_USERNAME and
// CORRAL_REGISTRY_PASSWORD.
type EnvAuthProvider struct{}

// NewEnvAuthProvider creates a new environment-based auth provider.
func NewEnvAuthProvider() *EnvAuthProvider {
	return &EnvAuthProvider{}
}

// GetCredentials returns username and password for a registry.
func (p *EnvAuthProvider) GetCredentials(_ context.Context, _ string) (string, string, error) {
	return os.Getenv("CORRAL_REGISTRY_USERNAME"), os.Getenv("CORRAL_REGISTRY_PASSWORD"), nil
}
