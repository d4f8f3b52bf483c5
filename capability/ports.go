// Package capability defines the host-side capability contracts and the
// Handler that routes guest calls to whichever provider is bound for each
// capability kind.
package capability

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Interface names used in dispatch traces and unconfigured-capability errors.
const (
	InterfaceBlobstore        = "Blobstore"
	InterfaceIncomingHTTP     = "IncomingHttp"
	InterfaceOutgoingHTTP     = "OutgoingHttp"
	InterfaceKeyValueAtomic   = "KeyvalueAtomic"
	InterfaceKeyValueEventual = "KeyvalueEventual"
	InterfaceMessaging        = "Messaging"
)

// ByteRange is an inclusive byte range within an object.
type ByteRange struct {
	First uint64
	Last  uint64
}

// IncomingValue is a readable value returned by a provider together with its
// length in bytes. The reader is single-use.
type IncomingValue struct {
	Data io.Reader
	Size uint64
}

// ContainerMetadata describes a container. CreatedAt is seconds since the
// Unix epoch; providers normalize missing or negative timestamps to zero.
type ContainerMetadata struct {
	Name      string
	CreatedAt uint64
}

// ObjectMetadata describes an object within a container.
type ObjectMetadata struct {
	Name      string
	Container string
	Size      uint64
	CreatedAt uint64
}

// ObjectNames is a lazy, finite, non-restartable sequence of object names.
// Next returns io.EOF once the sequence is exhausted.
type ObjectNames interface {
	Next(ctx context.Context) (string, error)
}

// Blobstore is the contract for container/object storage providers.
type Blobstore interface {
	// CreateContainer creates the named container.
	CreateContainer(ctx context.Context, name string) error

	// ContainerExists reports whether the named container exists. Absence is
	// a false result, not an error; only backend faults are errors.
	ContainerExists(ctx context.Context, name string) (bool, error)

	// DeleteContainer deletes the named container.
	DeleteContainer(ctx context.Context, name string) error

	// ContainerInfo returns metadata for the named container. It fails if
	// the container does not exist.
	ContainerInfo(ctx context.Context, name string) (ContainerMetadata, error)

	// GetData reads the inclusive byte range of an object. A missing object
	// yields a zero-length value, not an error.
	GetData(ctx context.Context, container, name string, rng ByteRange) (IncomingValue, error)

	// HasObject reports whether the object exists, with the same
	// missing-versus-error distinction as ContainerExists.
	HasObject(ctx context.Context, container, name string) (bool, error)

	// WriteData stores the value under the given name. The provider drains
	// the reader fully before committing; it never silently truncates.
	WriteData(ctx context.Context, container, name string, value io.Reader) error

	// DeleteObjects deletes the named objects in one batch. It fails as a
	// whole only if the batch cannot be submitted; partial-failure policy is
	// backend-defined.
	DeleteObjects(ctx context.Context, container string, names []string) error

	// ListObjects returns a lazy sequence of object names in the container.
	ListObjects(ctx context.Context, container string) (ObjectNames, error)

	// ObjectInfo returns metadata for the named object. It fails if the
	// object does not exist.
	ObjectInfo(ctx context.Context, container, name string) (ObjectMetadata, error)

	// ClearContainer removes the objects present in the container at call
	// time. The default composite lists then batch-deletes that snapshot and
	// is not atomic: objects created after the snapshot survive.
	ClearContainer(ctx context.Context, container string) error
}

// ClearContainerSnapshot is the default ClearContainer composite: collect the
// ListObjects snapshot, then delete it in one batch. Providers without a
// cheaper native operation delegate to it.
func ClearContainerSnapshot(ctx context.Context, store Blobstore, container string) error {
	names, err := store.ListObjects(ctx, container)
	if err != nil {
		return opError("clear-container", "failed to list objects", err)
	}
	snapshot, err := CollectObjectNames(ctx, names)
	if err != nil {
		return opError("clear-container", "failed to collect object names", err)
	}
	return store.DeleteObjects(ctx, container, snapshot)
}

// CollectObjectNames drains an ObjectNames sequence into a slice.
func CollectObjectNames(ctx context.Context, names ObjectNames) ([]string, error) {
	var out []string
	for {
		name, err := names.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
}

// KeyValueAtomic is the contract for atomically consistent key-value
// providers. Concurrency safety of the operations is the backend's job.
type KeyValueAtomic interface {
	// Increment adds delta to the counter stored under key and returns the
	// new value.
	Increment(ctx context.Context, bucket, key string, delta uint64) (uint64, error)

	// CompareAndSwap stores new only when the current value equals old. A
	// mismatch is a false result, never destructive and never an error.
	CompareAndSwap(ctx context.Context, bucket, key string, old, new uint64) (bool, error)
}

// KeyValueEventual is the contract for eventually consistent key-value
// providers. No read-after-write ordering is guaranteed across replicas.
type KeyValueEventual interface {
	// Get returns the value stored under key, or nil if the key is absent.
	Get(ctx context.Context, bucket, key string) (*IncomingValue, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, bucket, key string, value io.Reader) error

	// Delete removes the key.
	Delete(ctx context.Context, bucket, key string) error

	// Exists reports whether the key is present.
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// BrokerMessage is a message exchanged through a messaging provider.
type BrokerMessage struct {
	Subject string
	Body    []byte
	ReplyTo string
}

// Messaging is the contract for pub/sub messaging providers.
type Messaging interface {
	// Request publishes to subject and waits for a single reply, failing
	// with a timeout error once timeout elapses.
	Request(ctx context.Context, subject string, body []byte, timeout time.Duration) (BrokerMessage, error)

	// RequestMulti collects up to max replies until the timeout elapses or
	// the cap is reached, whichever comes first.
	RequestMulti(ctx context.Context, subject string, body []byte, timeout time.Duration, max uint32) ([]BrokerMessage, error)

	// Publish sends the message fire-and-forget. Success means the broker
	// accepted it, not that it was delivered.
	Publish(ctx context.Context, msg BrokerMessage) error
}

// IncomingHTTP is the contract for handlers of HTTP requests addressed to
// the guest.
type IncomingHTTP interface {
	Handle(ctx context.Context, req *http.Request) (*http.Response, error)
}

// OutgoingHTTPRequest is an HTTP request originated by the guest, together
// with the provider's entire configuration surface: three timeout upper
// bounds and a TLS flag. A provider must fail with a timeout error rather
// than hang past any of the bounds.
type OutgoingHTTPRequest struct {
	UseTLS    bool
	Authority string
	Request   *http.Request

	// ConnectTimeout bounds the initial connect.
	ConnectTimeout time.Duration
	// FirstByteTimeout bounds the wait for the first byte of the response.
	FirstByteTimeout time.Duration
	// BetweenBytesTimeout bounds the gap between response body chunks.
	BetweenBytesTimeout time.Duration
}

// OutgoingHTTP is the contract for providers performing HTTP requests on the
// guest's behalf.
type OutgoingHTTP interface {
	Handle(ctx context.Context, req OutgoingHTTPRequest) (*http.Response, error)
}

// Milliseconds converts a whole-millisecond duration, as timeouts cross the
// guest boundary, to the native duration type.
func Milliseconds(ms uint32) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
