// Package config loads the declarative runtime wiring configuration: which
// provider backs each capability kind, with what settings. A loaded and
// validated Config produces a capability.HandlerBuilder ready to freeze.
package config

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// Capability kinds addressable from the wiring configuration.
const (
	KindBlobstore    = "blobstore"
	KindKeyValue     = "keyvalue"
	KindMessaging    = "messaging"
	KindOutgoingHTTP = "outgoing-http"
)

// Provider names for the built-in providers.
const (
	ProviderMem        = "mem"
	ProviderS3         = "s3"
	ProviderHTTPClient = "httpclient"
)

// ProviderBlock selects and configures the provider for one capability kind.
type ProviderBlock struct {
	Provider string         `yaml:"provider"`
	Config   map[string]any `yaml:"config,omitempty"`
}

// Config is the root of the runtime wiring configuration.
type Config struct {
	// HostCompat is a semver constraint the running host version must
	// satisfy, e.g. ">= 1.2". Empty means any host.
	HostCompat string `yaml:"host_compat,omitempty"`

	// Capabilities maps capability kinds to provider blocks. Kinds left
	// out stay unconfigured on the resulting handler.
	Capabilities map[string]ProviderBlock `yaml:"capabilities"`
}

// Load parses a YAML wiring configuration.
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse wiring config: %w", err)
	}
	for kind, block := range cfg.Capabilities {
		if block.Provider == "" {
			return nil, fmt.Errorf("capability %q: missing provider", kind)
		}
	}
	return &cfg, nil
}

// decodeBlock round-trips a raw config block into a typed settings struct.
func decodeBlock[T any](raw map[string]any) (T, error) {
	var out T
	if raw == nil {
		return out, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("failed to re-encode config block: %w", err)
	}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("failed to decode config block: %w", err)
	}
	return out, nil
}
