package config

import (
	"fmt"

	"github.com/corral-dev/corral-host-sdk/registry"
)

// S3Settings are the settings accepted by the S3 blobstore provider.
// Credentials come from the ambient AWS configuration, never from here.
type S3Settings struct {
	Region   string `json:"region,omitempty"   yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// HTTPClientSettings are the settings accepted by the outgoing HTTP provider.
type HTTPClientSettings struct {
	InsecureTLS bool `json:"insecure_tls,omitempty" yaml:"insecure_tls,omitempty"`
}

// MemSettings is the empty settings block of the in-memory providers.
type MemSettings struct{}

// schemaKey builds the registry key for a kind/provider pair.
func schemaKey(kind, provider string) string {
	return kind + "." + provider
}

// RegisterProviderSchemas registers the config schemas of every built-in
// provider with a schema registry.
func RegisterProviderSchemas(reg registry.SchemaRegistry) error {
	entries := []struct {
		kind     string
		provider string
		model    any
	}{
		{KindBlobstore, ProviderMem, MemSettings{}},
		{KindBlobstore, ProviderS3, S3Settings{}},
		{KindKeyValue, ProviderMem, MemSettings{}},
		{KindMessaging, ProviderMem, MemSettings{}},
		{KindOutgoingHTTP, ProviderHTTPClient, HTTPClientSettings{}},
	}
	for _, e := range entries {
		if err := reg.Register(schemaKey(e.kind, e.provider), e.model); err != nil {
			return fmt.Errorf("failed to register schema for %s.%s: %w", e.kind, e.provider, err)
		}
	}
	return nil
}
