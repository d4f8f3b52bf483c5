package mem

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/corral-dev/corral-host-sdk/capability"
)

// KeyValue is an in-memory store implementing both capability.KeyValueAtomic
// and capability.KeyValueEventual over the same buckets. Counter values are
// stored as decimal text so atomic and eventual views stay interchangeable.
type KeyValue struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
}

// NewKeyValue returns an empty in-memory key-value store.
func NewKeyValue() *KeyValue {
	return &KeyValue{buckets: make(map[string]map[string][]byte)}
}

var _ capability.KeyValueAtomic = (*KeyValue)(nil)
var _ capability.KeyValueEventual = (*KeyValue)(nil)

func (kv *KeyValue) bucket(name string) map[string][]byte {
	b, ok := kv.buckets[name]
	if !ok {
		b = make(map[string][]byte)
		kv.buckets[name] = b
	}
	return b
}

func counterValue(raw []byte, ok bool) (uint64, error) {
	if !ok || len(raw) == 0 {
		return 0, nil
	}
	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, capability.ErrMalformed
	}
	return v, nil
}

// Increment implements capability.KeyValueAtomic. An absent key counts from
// zero.
func (kv *KeyValue) Increment(_ context.Context, bucket, key string, delta uint64) (uint64, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	b := kv.bucket(bucket)
	raw, ok := b[key]
	current, err := counterValue(raw, ok)
	if err != nil {
		return 0, err
	}
	current += delta
	b[key] = []byte(strconv.FormatUint(current, 10))
	return current, nil
}

// CompareAndSwap implements capability.KeyValueAtomic. A mismatch leaves the
// stored value untouched and reports false.
func (kv *KeyValue) CompareAndSwap(_ context.Context, bucket, key string, old, new uint64) (bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	b := kv.bucket(bucket)
	raw, ok := b[key]
	current, err := counterValue(raw, ok)
	if err != nil {
		return false, err
	}
	if current != old {
		return false, nil
	}
	b[key] = []byte(strconv.FormatUint(new, 10))
	return true, nil
}

// Get implements capability.KeyValueEventual. A missing key yields nil.
func (kv *KeyValue) Get(_ context.Context, bucket, key string) (*capability.IncomingValue, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	raw, ok := kv.bucket(bucket)[key]
	if !ok {
		return nil, nil
	}
	data := make([]byte, len(raw))
	copy(data, raw)
	return &capability.IncomingValue{Data: bytes.NewReader(data), Size: uint64(len(data))}, nil
}

// Set implements capability.KeyValueEventual.
func (kv *KeyValue) Set(_ context.Context, bucket, key string, value io.Reader) error {
	data, err := io.ReadAll(value)
	if err != nil {
		return err
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.bucket(bucket)[key] = data
	return nil
}

// Delete implements capability.KeyValueEventual.
func (kv *KeyValue) Delete(_ context.Context, bucket, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.bucket(bucket), key)
	return nil
}

// Exists implements capability.KeyValueEventual.
func (kv *KeyValue) Exists(_ context.Context, bucket, key string) (bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	_, ok := kv.bucket(bucket)[key]
	return ok, nil
}
