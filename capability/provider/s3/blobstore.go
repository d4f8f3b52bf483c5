// Package s3 implements the Blobstore capability contract on the AWS S3
// API: containers map to buckets and objects to keys.
//
// Edge-case policy: a NoSuchKey backend error on reads is translated into
// the contract's missing-object semantics (empty value, false) instead of
// being propagated; every other backend error is wrapped with
// call-specific context. Metadata lookups are backend-authoritative on
// every call; nothing is cached locally.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/corral-dev/corral-host-sdk/capability"
)

// API is the subset of the S3 client used by the provider. *awss3.Client
// satisfies it; tests substitute a fake.
type API interface {
	CreateBucket(ctx context.Context, in *awss3.CreateBucketInput, opts ...func(*awss3.Options)) (*awss3.CreateBucketOutput, error)
	DeleteBucket(ctx context.Context, in *awss3.DeleteBucketInput, opts ...func(*awss3.Options)) (*awss3.DeleteBucketOutput, error)
	ListBuckets(ctx context.Context, in *awss3.ListBucketsInput, opts ...func(*awss3.Options)) (*awss3.ListBucketsOutput, error)
	GetObject(ctx context.Context, in *awss3.GetObjectInput, opts ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *awss3.HeadObjectInput, opts ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *awss3.PutObjectInput, opts ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, in *awss3.DeleteObjectsInput, opts ...func(*awss3.Options)) (*awss3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, in *awss3.ListObjectsV2Input, opts ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
}

// Blobstore is a capability.Blobstore backed by a remote S3-compatible
// object store.
type Blobstore struct {
	client   API
	region   string
	endpoint string
}

// Option configures a Blobstore.
type Option func(*Blobstore)

// WithClient injects an S3 client, bypassing default AWS configuration
// loading. Intended for tests.
func WithClient(client API) Option {
	return func(b *Blobstore) {
		b.client = client
	}
}

// WithRegion overrides the ambient AWS region.
func WithRegion(region string) Option {
	return func(b *Blobstore) {
		b.region = region
	}
}

// WithEndpoint points the client at an S3-compatible endpoint and switches
// to path-style addressing.
func WithEndpoint(url string) Option {
	return func(b *Blobstore) {
		b.endpoint = url
	}
}

// New returns a Blobstore. Without WithClient it loads the ambient AWS
// configuration (environment, shared config, instance role).
func New(ctx context.Context, opts ...Option) (*Blobstore, error) {
	b := &Blobstore{}
	for _, opt := range opts {
		opt(b)
	}
	if b.client == nil {
		var loadOpts []func(*awsconfig.LoadOptions) error
		if b.region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(b.region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		b.client = awss3.NewFromConfig(cfg, func(o *awss3.Options) {
			if b.endpoint != "" {
				o.BaseEndpoint = aws.String(b.endpoint)
				o.UsePathStyle = true
			}
		})
	}
	return b, nil
}

var _ capability.Blobstore = (*Blobstore)(nil)

// isMissingObject reports whether err is the backend's missing-object
// error. GetObject reports NoSuchKey; HeadObject reports a bare NotFound.
func isMissingObject(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var api smithy.APIError
	if !errors.As(err, &api) {
		return false
	}
	return api.ErrorCode() == "NoSuchKey" || api.ErrorCode() == "NotFound"
}

// epochSeconds normalizes a backend timestamp to unsigned seconds since the
// epoch. Missing or negative timestamps normalize to zero.
func epochSeconds(t *time.Time) uint64 {
	if t == nil {
		return 0
	}
	secs := t.Unix()
	if secs < 0 {
		return 0
	}
	return uint64(secs)
}

func contentLength(n *int64) uint64 {
	if n == nil || *n < 0 {
		return 0
	}
	return uint64(*n)
}

// CreateContainer implements capability.Blobstore.
func (b *Blobstore) CreateContainer(ctx context.Context, name string) error {
	_, err := b.client.CreateBucket(ctx, &awss3.CreateBucketInput{Bucket: aws.String(name)})
	if err != nil {
		return fmt.Errorf("failed to create container %q: %w", name, err)
	}
	return nil
}

// ContainerExists implements capability.Blobstore. The backend has no
// direct lookup for a bucket's existence visible to the caller's
// credentials, so this scans the bucket list; absence is a false result.
func (b *Blobstore) ContainerExists(ctx context.Context, name string) (bool, error) {
	out, err := b.client.ListBuckets(ctx, &awss3.ListBucketsInput{})
	if err != nil {
		return false, fmt.Errorf("failed to list containers: %w", err)
	}
	for _, bucket := range out.Buckets {
		if aws.ToString(bucket.Name) == name {
			return true, nil
		}
	}
	return false, nil
}

// DeleteContainer implements capability.Blobstore.
func (b *Blobstore) DeleteContainer(ctx context.Context, name string) error {
	_, err := b.client.DeleteBucket(ctx, &awss3.DeleteBucketInput{Bucket: aws.String(name)})
	if err != nil {
		return fmt.Errorf("failed to delete container %q: %w", name, err)
	}
	return nil
}

// ContainerInfo implements capability.Blobstore. Each call costs a bucket
// list round trip; metadata is never cached.
func (b *Blobstore) ContainerInfo(ctx context.Context, name string) (capability.ContainerMetadata, error) {
	out, err := b.client.ListBuckets(ctx, &awss3.ListBucketsInput{})
	if err != nil {
		return capability.ContainerMetadata{}, fmt.Errorf("failed to get container info: %w", err)
	}
	for _, bucket := range out.Buckets {
		if aws.ToString(bucket.Name) == name {
			return capability.ContainerMetadata{
				Name:      name,
				CreatedAt: epochSeconds(bucket.CreationDate),
			}, nil
		}
	}
	return capability.ContainerMetadata{}, &capability.NotFoundError{Kind: "container", Name: name}
}

// GetData implements capability.Blobstore with a ranged read. A missing
// object yields a zero-length value so the guest cannot distinguish missing
// from empty.
func (b *Blobstore) GetData(ctx context.Context, container, name string, rng capability.ByteRange) (capability.IncomingValue, error) {
	out, err := b.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(name),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", rng.First, rng.Last)),
	})
	if err != nil {
		if isMissingObject(err) {
			return capability.IncomingValue{Data: bytes.NewReader(nil), Size: 0}, nil
		}
		return capability.IncomingValue{}, fmt.Errorf("failed to get data for %q: %w", name, err)
	}
	return capability.IncomingValue{Data: out.Body, Size: contentLength(out.ContentLength)}, nil
}

// HasObject implements capability.Blobstore with the same missing-versus-
// error translation as GetData. A head request keeps the round trip
// metadata-only; a GetObject here would leave a response body to drain.
func (b *Blobstore) HasObject(ctx context.Context, container, name string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(name),
	})
	if err != nil {
		if isMissingObject(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object %q: %w", name, err)
	}
	return true, nil
}

// WriteData implements capability.Blobstore. The value is drained fully
// before the PutObject is issued; a short read aborts the write rather than
// committing a truncated object.
func (b *Blobstore) WriteData(ctx context.Context, container, name string, value io.Reader) error {
	data, err := io.ReadAll(value)
	if err != nil {
		return fmt.Errorf("failed to read value for %q: %w", name, err)
	}
	_, err = b.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(name),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to write data for %q: %w", name, err)
	}
	return nil
}

// DeleteObjects implements capability.Blobstore as a single batch call. It
// fails as a whole only when the batch cannot be submitted; per-object
// failures follow the backend's policy.
func (b *Blobstore) DeleteObjects(ctx context.Context, container string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	ids := make([]types.ObjectIdentifier, 0, len(names))
	for _, name := range names {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(name)})
	}
	_, err := b.client.DeleteObjects(ctx, &awss3.DeleteObjectsInput{
		Bucket: aws.String(container),
		Delete: &types.Delete{Objects: ids},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}
	return nil
}

// ListObjects implements capability.Blobstore. The first page is fetched
// eagerly so submission errors surface here; subsequent pages are pulled
// lazily through the iterator's continuation token.
func (b *Blobstore) ListObjects(ctx context.Context, container string) (capability.ObjectNames, error) {
	it := &pagedNames{client: b.client, bucket: container}
	if err := it.fetch(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	return it, nil
}

// pagedNames walks ListObjectsV2 pages on demand. It is not restartable.
type pagedNames struct {
	client API
	bucket string

	names []string
	pos   int
	token *string
	done  bool
}

func (p *pagedNames) fetch(ctx context.Context, token *string) error {
	out, err := p.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:            aws.String(p.bucket),
		ContinuationToken: token,
	})
	if err != nil {
		return err
	}
	p.names = p.names[:0]
	p.pos = 0
	for _, obj := range out.Contents {
		p.names = append(p.names, aws.ToString(obj.Key))
	}
	if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
		p.token = out.NextContinuationToken
	} else {
		p.token = nil
		p.done = true
	}
	return nil
}

func (p *pagedNames) Next(ctx context.Context) (string, error) {
	for p.pos >= len(p.names) {
		if p.done {
			return "", io.EOF
		}
		if err := p.fetch(ctx, p.token); err != nil {
			return "", fmt.Errorf("failed to list objects: %w", err)
		}
	}
	name := p.names[p.pos]
	p.pos++
	return name, nil
}

// ObjectInfo implements capability.Blobstore through a head request.
// Absence is an error here, in contrast to the read operations that
// normalize it away.
func (b *Blobstore) ObjectInfo(ctx context.Context, container, name string) (capability.ObjectMetadata, error) {
	out, err := b.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(name),
	})
	if err != nil {
		if isMissingObject(err) {
			return capability.ObjectMetadata{}, &capability.NotFoundError{Kind: "object", Name: name}
		}
		return capability.ObjectMetadata{}, fmt.Errorf("failed to get object info for %q: %w", name, err)
	}
	return capability.ObjectMetadata{
		Name:      name,
		Container: container,
		Size:      contentLength(out.ContentLength),
		CreatedAt: epochSeconds(out.LastModified),
	}, nil
}

// ClearContainer implements capability.Blobstore via the snapshot
// composite: list, then batch-delete the snapshot. Objects created after
// the snapshot survive; the race is part of the contract.
func (b *Blobstore) ClearContainer(ctx context.Context, container string) error {
	return capability.ClearContainerSnapshot(ctx, b, container)
}
