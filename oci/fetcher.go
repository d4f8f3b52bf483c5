package oci

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"

	"github.com/corral-dev/corral-host-sdk/config"
	"github.com/corral-dev/corral-host-sdk/netutil"
)

// Media types accepted for the component layer.
const (
	MediaTypeWasm      = "application/wasm"
	MediaTypeWasmLayer = "application/vnd.module.wasm.content.layer.v1+wasm"
)

// maxManifestSize caps how much manifest and config JSON the fetcher will
// read from a registry.
const maxManifestSize = 4 << 20

// Component is a fetched guest component.
type Component struct {
	Reference string
	Digest    string
	Wasm      []byte
}

// Fetcher pulls component artifacts via oras-go.
type Fetcher struct {
	auth   AuthProvider
	client *http.Client
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithAuthProvider sets the credential source. Default: EnvAuthProvider.
func WithAuthProvider(p AuthProvider) FetcherOption {
	return func(f *Fetcher) {
		f.auth = p
	}
}

// NewFetcher creates a fetcher whose registry traffic retries transient
// failures with backoff.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		auth:   NewEnvAuthProvider(),
		client: &http.Client{Transport: &netutil.RetryTransport{}},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// repository builds an authenticated repository client for a reference.
func (f *Fetcher) repository(ctx context.Context, reference string) (*remote.Repository, error) {
	repo, err := remote.NewRepository(reference)
	if err != nil {
		return nil, fmt.Errorf("create repository for %q: %w", reference, err)
	}

	username, password, err := f.auth.GetCredentials(ctx, repo.Reference.Registry)
	if err == nil && username != "" {
		repo.Client = &auth.Client{
			Client: f.client,
			Credential: auth.StaticCredential(repo.Reference.Registry, auth.Credential{
				Username: username,
				Password: password,
			}),
		}
	} else {
		repo.Client = &auth.Client{Client: f.client}
	}

	return repo, nil
}

// Fetch pulls the component artifact behind a tagged reference, e.g.
// "registry.example.com/components/billing:1.2.0".
func (f *Fetcher) Fetch(ctx context.Context, reference string) (*Component, error) {
	repo, err := f.repository(ctx, reference)
	if err != nil {
		return nil, err
	}
	tag := repo.Reference.Reference
	if tag == "" {
		return nil, fmt.Errorf("reference %q has no tag", reference)
	}

	store := memory.New()
	manifestDesc, err := oras.Copy(ctx, repo, tag, store, tag, oras.CopyOptions{})
	if err != nil {
		return nil, fmt.Errorf("pull artifact %q: %w", reference, err)
	}

	manifest, err := f.readManifest(ctx, store, manifestDesc)
	if err != nil {
		return nil, err
	}

	wasmDesc, err := findWasmLayer(manifest)
	if err != nil {
		return nil, fmt.Errorf("artifact %q: %w", reference, err)
	}

	wasmRC, err := store.Fetch(ctx, wasmDesc)
	if err != nil {
		return nil, fmt.Errorf("fetch component layer: %w", err)
	}
	defer func() {
		_ = wasmRC.Close()
	}()

	wasm, err := io.ReadAll(wasmRC)
	if err != nil {
		return nil, fmt.Errorf("read component layer: %w", err)
	}

	component := &Component{
		Reference: reference,
		Digest:    wasmDesc.Digest.String(),
		Wasm:      wasm,
	}
	if err := component.VerifyIntegrity(); err != nil {
		return nil, err
	}
	return component, nil
}

// Resolve lists the repository's tags and picks the highest one satisfying
// a semver constraint.
func (f *Fetcher) Resolve(ctx context.Context, repoRef, constraint string) (string, error) {
	repo, err := f.repository(ctx, repoRef)
	if err != nil {
		return "", err
	}

	var tags []string
	err = repo.Tags(ctx, "", func(page []string) error {
		tags = append(tags, page...)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("list tags for %q: %w", repoRef, err)
	}

	return config.ResolveVersion(constraint, tags)
}

func (f *Fetcher) readManifest(ctx context.Context, store *memory.Store, desc ocispec.Descriptor) (*ocispec.Manifest, error) {
	rc, err := store.Fetch(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()

	raw, err := io.ReadAll(netutil.NewLimitedReader(rc, maxManifestSize))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON: %w", err)
	}
	return &manifest, nil
}

func findWasmLayer(manifest *ocispec.Manifest) (ocispec.Descriptor, error) {
	for _, layer := range manifest.Layers {
		if layer.MediaType == MediaTypeWasm || layer.MediaType == MediaTypeWasmLayer {
			return layer, nil
		}
	}
	return ocispec.Descriptor{}, fmt.Errorf("no wasm layer found")
}
