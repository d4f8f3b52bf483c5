package config

import (
	"context"
	"fmt"

	"github.com/corral-dev/corral-host-sdk/capability"
	"github.com/corral-dev/corral-host-sdk/capability/provider/httpclient"
	"github.com/corral-dev/corral-host-sdk/capability/provider/mem"
	"github.com/corral-dev/corral-host-sdk/capability/provider/s3"
)

// Build instantiates the configured providers and returns a builder with
// them attached. The keyvalue kind binds one provider to both the atomic
// and the eventual contract.
func (c *Config) Build(ctx context.Context) (capability.HandlerBuilder, error) {
	var b capability.HandlerBuilder

	for kind, block := range c.Capabilities {
		var err error
		switch kind {
		case KindBlobstore:
			b, err = c.buildBlobstore(ctx, b, block)
		case KindKeyValue:
			b, err = buildKeyValue(b, block)
		case KindMessaging:
			b, err = buildMessaging(b, block)
		case KindOutgoingHTTP:
			b, err = buildOutgoingHTTP(b, block)
		default:
			err = fmt.Errorf("unknown capability kind %q", kind)
		}
		if err != nil {
			return capability.HandlerBuilder{}, err
		}
	}

	return b, nil
}

func (c *Config) buildBlobstore(ctx context.Context, b capability.HandlerBuilder, block ProviderBlock) (capability.HandlerBuilder, error) {
	switch block.Provider {
	case ProviderMem:
		return b.WithBlobstore(mem.NewBlobstore()), nil
	case ProviderS3:
		settings, err := decodeBlock[S3Settings](block.Config)
		if err != nil {
			return b, fmt.Errorf("blobstore.s3: %w", err)
		}
		var opts []s3.Option
		if settings.Region != "" {
			opts = append(opts, s3.WithRegion(settings.Region))
		}
		if settings.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(settings.Endpoint))
		}
		store, err := s3.New(ctx, opts...)
		if err != nil {
			return b, fmt.Errorf("blobstore.s3: %w", err)
		}
		return b.WithBlobstore(store), nil
	default:
		return b, fmt.Errorf("blobstore: unknown provider %q", block.Provider)
	}
}

func buildKeyValue(b capability.HandlerBuilder, block ProviderBlock) (capability.HandlerBuilder, error) {
	switch block.Provider {
	case ProviderMem:
		kv := mem.NewKeyValue()
		return b.WithKeyValueAtomic(kv).WithKeyValueEventual(kv), nil
	default:
		return b, fmt.Errorf("keyvalue: unknown provider %q", block.Provider)
	}
}

func buildMessaging(b capability.HandlerBuilder, block ProviderBlock) (capability.HandlerBuilder, error) {
	switch block.Provider {
	case ProviderMem:
		return b.WithMessaging(mem.NewMessaging()), nil
	default:
		return b, fmt.Errorf("messaging: unknown provider %q", block.Provider)
	}
}

func buildOutgoingHTTP(b capability.HandlerBuilder, block ProviderBlock) (capability.HandlerBuilder, error) {
	switch block.Provider {
	case ProviderHTTPClient:
		settings, err := decodeBlock[HTTPClientSettings](block.Config)
		if err != nil {
			return b, fmt.Errorf("outgoing-http.httpclient: %w", err)
		}
		var opts []httpclient.Option
		if settings.InsecureTLS {
			opts = append(opts, httpclient.WithInsecureTLS())
		}
		return b.WithOutgoingHTTP(httpclient.New(opts...)), nil
	default:
		return b, fmt.Errorf("outgoing-http: unknown provider %q", block.Provider)
	}
}
