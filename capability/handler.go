package capability

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// binding holds at most one provider for a capability kind. Replace swaps
// atomically and returns the previous provider, so in-flight calls that
// already loaded the old provider keep running against it. A nil interface
// value unbinds the kind; it is never stored as a bound provider.
type binding[T any] struct {
	p atomic.Pointer[T]
}

func (b *binding[T]) load() (T, bool) {
	if v := b.p.Load(); v != nil {
		return *v, true
	}
	var zero T
	return zero, false
}

func (b *binding[T]) replace(v T) (T, bool) {
	var next *T
	if any(v) != nil {
		next = &v
	}
	prev := b.p.Swap(next)
	if prev == nil {
		var zero T
		return zero, false
	}
	return *prev, true
}

func (b *binding[T]) store(v T, ok bool) {
	if !ok || any(v) == nil {
		b.p.Store(nil)
		return
	}
	b.p.Store(&v)
}

// Handler routes capability calls to the provider bound for each kind. It
// holds at most one provider per kind and is shared by reference across
// host execution contexts; all methods are safe for concurrent use,
// including concurrent rebinding.
//
// A call on a kind with no bound provider fails with an UnconfiguredError
// and has no observable side effect. The Handler forwards arguments
// verbatim and returns results unmodified: no retry, no caching, no
// argument validation beyond the contract's own signature.
type Handler struct {
	blobstore        binding[Blobstore]
	incomingHTTP     binding[IncomingHTTP]
	outgoingHTTP     binding[OutgoingHTTP]
	keyValueAtomic   binding[KeyValueAtomic]
	keyValueEventual binding[KeyValueEventual]
	messaging        binding[Messaging]

	trace TraceFunc
}

// NewHandler returns a Handler with no providers bound. Bindings are
// typically assembled through a HandlerBuilder instead.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithTrace sets the dispatch trace hook. See TraceFunc.
func WithTrace(fn TraceFunc) HandlerOption {
	return func(h *Handler) {
		h.trace = fn
	}
}

// dispatch emits the observational trace event for a call about to be
// routed. Purely diagnostic; it never affects the call.
func (h *Handler) dispatch(iface, method string) {
	if h.trace != nil {
		h.trace(iface, method)
		return
	}
	traceDispatch(iface, method)
}

func proxy[T any](h *Handler, b *binding[T], iface, method string) (T, error) {
	h.dispatch(iface, method)
	impl, ok := b.load()
	if !ok {
		var zero T
		return zero, &UnconfiguredError{Interface: iface, Method: method}
	}
	return impl, nil
}

// ReplaceBlobstore binds a Blobstore provider, returning the previous one if
// such was set. A nil provider unbinds the kind.
func (h *Handler) ReplaceBlobstore(p Blobstore) (Blobstore, bool) {
	return h.blobstore.replace(p)
}

// ReplaceIncomingHTTP binds an IncomingHTTP provider, returning the previous
// one if such was set. A nil provider unbinds the kind.
func (h *Handler) ReplaceIncomingHTTP(p IncomingHTTP) (IncomingHTTP, bool) {
	return h.incomingHTTP.replace(p)
}

// ReplaceOutgoingHTTP binds an OutgoingHTTP provider, returning the previous
// one if such was set. A nil provider unbinds the kind.
func (h *Handler) ReplaceOutgoingHTTP(p OutgoingHTTP) (OutgoingHTTP, bool) {
	return h.outgoingHTTP.replace(p)
}

// ReplaceKeyValueAtomic binds a KeyValueAtomic provider, returning the
// previous one if such was set. A nil provider unbinds the kind.
func (h *Handler) ReplaceKeyValueAtomic(p KeyValueAtomic) (KeyValueAtomic, bool) {
	return h.keyValueAtomic.replace(p)
}

// ReplaceKeyValueEventual binds a KeyValueEventual provider, returning the
// previous one if such was set. A nil provider unbinds the kind.
func (h *Handler) ReplaceKeyValueEventual(p KeyValueEventual) (KeyValueEventual, bool) {
	return h.keyValueEventual.replace(p)
}

// ReplaceMessaging binds a Messaging provider, returning the previous one if
// such was set. A nil provider unbinds the kind.
func (h *Handler) ReplaceMessaging(p Messaging) (Messaging, bool) {
	return h.messaging.replace(p)
}

var _ Blobstore = (*Handler)(nil)
var _ KeyValueAtomic = (*Handler)(nil)
var _ KeyValueEventual = (*Handler)(nil)
var _ Messaging = (*Handler)(nil)

// CreateContainer implements Blobstore.
func (h *Handler) CreateContainer(ctx context.Context, name string) error {
	impl, err := proxy(h, &h.blobstore, InterfaceBlobstore, "wasi:blobstore/blobstore.create-container")
	if err != nil {
		return err
	}
	return impl.CreateContainer(ctx, name)
}

// ContainerExists implements Blobstore.
func (h *Handler) ContainerExists(ctx context.Context, name string) (bool, error) {
	impl, err := proxy(h, &h.blobstore, InterfaceBlobstore, "wasi:blobstore/blobstore.container-exists")
	if err != nil {
		return false, err
	}
	return impl.ContainerExists(ctx, name)
}

// DeleteContainer implements Blobstore.
func (h *Handler) DeleteContainer(ctx context.Context, name string) error {
	impl, err := proxy(h, &h.blobstore, InterfaceBlobstore, "wasi:blobstore/blobstore.delete-container")
	if err != nil {
		return err
	}
	return impl.DeleteContainer(ctx, name)
}

// ContainerInfo implements Blobstore.
func (h *Handler) ContainerInfo(ctx context.Context, name string) (ContainerMetadata, error) {
	impl, err := proxy(h, &h.blobstore, InterfaceBlobstore, "wasi:blobstore/container.info")
	if err != nil {
		return ContainerMetadata{}, err
	}
	return impl.ContainerInfo(ctx, name)
}

// GetData implements Blobstore.
func (h *Handler) GetData(ctx context.Context, container, name string, rng ByteRange) (IncomingValue, error) {
	impl, err := proxy(h, &h.blobstore, InterfaceBlobstore, "wasi:blobstore/container.get-data")
	if err != nil {
		return IncomingValue{}, err
	}
	return impl.GetData(ctx, container, name, rng)
}

// HasObject implements Blobstore.
func (h *Handler) HasObject(ctx context.Context, container, name string) (bool, error) {
	impl, err := proxy(h, &h.blobstore, InterfaceBlobstore, "wasi:blobstore/container.has-object")
	if err != nil {
		return false, err
	}
	return impl.HasObject(ctx, container, name)
}

// WriteData implements Blobstore.
func (h *Handler) WriteData(ctx context.Context, container, name string, value io.Reader) error {
	impl, err := proxy(h, &h.blobstore, InterfaceBlobstore, "wasi:blobstore/container.write-data")
	if err != nil {
		return err
	}
	return impl.WriteData(ctx, container, name, value)
}

// DeleteObjects implements Blobstore.
func (h *Handler) DeleteObjects(ctx context.Context, container string, names []string) error {
	impl, err := proxy(h, &h.blobstore, InterfaceBlobstore, "wasi:blobstore/container.delete-objects")
	if err != nil {
		return err
	}
	return impl.DeleteObjects(ctx, container, names)
}

// ListObjects implements Blobstore.
func (h *Handler) ListObjects(ctx context.Context, container string) (ObjectNames, error) {
	impl, err := proxy(h, &h.blobstore, InterfaceBlobstore, "wasi:blobstore/container.list-objects")
	if err != nil {
		return nil, err
	}
	return impl.ListObjects(ctx, container)
}

// ObjectInfo implements Blobstore.
func (h *Handler) ObjectInfo(ctx context.Context, container, name string) (ObjectMetadata, error) {
	impl, err := proxy(h, &h.blobstore, InterfaceBlobstore, "wasi:blobstore/container.object-info")
	if err != nil {
		return ObjectMetadata{}, err
	}
	return impl.ObjectInfo(ctx, container, name)
}

// ClearContainer implements Blobstore.
func (h *Handler) ClearContainer(ctx context.Context, container string) error {
	impl, err := proxy(h, &h.blobstore, InterfaceBlobstore, "wasi:blobstore/container.clear")
	if err != nil {
		return err
	}
	return impl.ClearContainer(ctx, container)
}

// Increment implements KeyValueAtomic.
func (h *Handler) Increment(ctx context.Context, bucket, key string, delta uint64) (uint64, error) {
	impl, err := proxy(h, &h.keyValueAtomic, InterfaceKeyValueAtomic, "wasi:keyvalue/atomic.increment")
	if err != nil {
		return 0, err
	}
	return impl.Increment(ctx, bucket, key, delta)
}

// CompareAndSwap implements KeyValueAtomic.
func (h *Handler) CompareAndSwap(ctx context.Context, bucket, key string, old, new uint64) (bool, error) {
	impl, err := proxy(h, &h.keyValueAtomic, InterfaceKeyValueAtomic, "wasi:keyvalue/atomic.compare-and-swap")
	if err != nil {
		return false, err
	}
	return impl.CompareAndSwap(ctx, bucket, key, old, new)
}

// Get implements KeyValueEventual.
func (h *Handler) Get(ctx context.Context, bucket, key string) (*IncomingValue, error) {
	impl, err := proxy(h, &h.keyValueEventual, InterfaceKeyValueEventual, "wasi:keyvalue/eventual.get")
	if err != nil {
		return nil, err
	}
	return impl.Get(ctx, bucket, key)
}

// Set implements KeyValueEventual.
func (h *Handler) Set(ctx context.Context, bucket, key string, value io.Reader) error {
	impl, err := proxy(h, &h.keyValueEventual, InterfaceKeyValueEventual, "wasi:keyvalue/eventual.set")
	if err != nil {
		return err
	}
	return impl.Set(ctx, bucket, key, value)
}

// Delete implements KeyValueEventual.
func (h *Handler) Delete(ctx context.Context, bucket, key string) error {
	impl, err := proxy(h, &h.keyValueEventual, InterfaceKeyValueEventual, "wasi:keyvalue/eventual.delete")
	if err != nil {
		return err
	}
	return impl.Delete(ctx, bucket, key)
}

// Exists implements KeyValueEventual.
func (h *Handler) Exists(ctx context.Context, bucket, key string) (bool, error) {
	impl, err := proxy(h, &h.keyValueEventual, InterfaceKeyValueEventual, "wasi:keyvalue/eventual.exists")
	if err != nil {
		return false, err
	}
	return impl.Exists(ctx, bucket, key)
}

// Request implements Messaging.
func (h *Handler) Request(ctx context.Context, subject string, body []byte, timeout time.Duration) (BrokerMessage, error) {
	impl, err := proxy(h, &h.messaging, InterfaceMessaging, "wasmcloud:messaging/consumer.request")
	if err != nil {
		return BrokerMessage{}, err
	}
	return impl.Request(ctx, subject, body, timeout)
}

// RequestMulti implements Messaging.
func (h *Handler) RequestMulti(ctx context.Context, subject string, body []byte, timeout time.Duration, max uint32) ([]BrokerMessage, error) {
	impl, err := proxy(h, &h.messaging, InterfaceMessaging, "wasmcloud:messaging/consumer.request-multi")
	if err != nil {
		return nil, err
	}
	return impl.RequestMulti(ctx, subject, body, timeout, max)
}

// Publish implements Messaging.
func (h *Handler) Publish(ctx context.Context, msg BrokerMessage) error {
	impl, err := proxy(h, &h.messaging, InterfaceMessaging, "wasmcloud:messaging/consumer.publish")
	if err != nil {
		return err
	}
	return impl.Publish(ctx, msg)
}

// HandleIncomingHTTP routes an HTTP request addressed to the guest through
// the bound IncomingHTTP provider.
func (h *Handler) HandleIncomingHTTP(ctx context.Context, req *http.Request) (*http.Response, error) {
	impl, err := proxy(h, &h.incomingHTTP, InterfaceIncomingHTTP, "wasi:http/incoming-handler.handle")
	if err != nil {
		return nil, err
	}
	return impl.Handle(ctx, req)
}

// HandleOutgoingHTTP routes a guest-originated HTTP request through the
// bound OutgoingHTTP provider.
func (h *Handler) HandleOutgoingHTTP(ctx context.Context, req OutgoingHTTPRequest) (*http.Response, error) {
	impl, err := proxy(h, &h.outgoingHTTP, InterfaceOutgoingHTTP, "wasi:http/outgoing-handler.handle")
	if err != nil {
		return nil, err
	}
	return impl.Handle(ctx, req)
}
