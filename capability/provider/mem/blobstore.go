// Package mem provides map-backed in-memory capability providers. They back
// the test suite and small embedders; durability and cross-process sharing
// are out of their scope.
package mem

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/corral-dev/corral-host-sdk/capability"
)

type memObject struct {
	data      []byte
	createdAt uint64
}

type memContainer struct {
	objects   map[string]*memObject
	createdAt uint64
}

// Blobstore is an in-memory capability.Blobstore.
type Blobstore struct {
	mu         sync.RWMutex
	containers map[string]*memContainer
}

// NewBlobstore returns an empty in-memory blobstore.
func NewBlobstore() *Blobstore {
	return &Blobstore{containers: make(map[string]*memContainer)}
}

var _ capability.Blobstore = (*Blobstore)(nil)

func now() uint64 {
	// Subsecond precision is not part of the contract.
	return uint64(time.Now().Unix())
}

// CreateContainer implements capability.Blobstore. Creating an existing
// container is a no-op, matching object-storage semantics.
func (b *Blobstore) CreateContainer(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.containers[name]; !ok {
		b.containers[name] = &memContainer{
			objects:   make(map[string]*memObject),
			createdAt: now(),
		}
	}
	return nil
}

// ContainerExists implements capability.Blobstore.
func (b *Blobstore) ContainerExists(_ context.Context, name string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.containers[name]
	return ok, nil
}

// DeleteContainer implements capability.Blobstore.
func (b *Blobstore) DeleteContainer(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.containers, name)
	return nil
}

// ContainerInfo implements capability.Blobstore.
func (b *Blobstore) ContainerInfo(_ context.Context, name string) (capability.ContainerMetadata, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.containers[name]
	if !ok {
		return capability.ContainerMetadata{}, &capability.NotFoundError{Kind: "container", Name: name}
	}
	return capability.ContainerMetadata{Name: name, CreatedAt: c.createdAt}, nil
}

// GetData implements capability.Blobstore. A missing object yields a
// zero-length value, indistinguishable from an empty one.
func (b *Blobstore) GetData(_ context.Context, container, name string, rng capability.ByteRange) (capability.IncomingValue, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.containers[container]
	if !ok {
		return capability.IncomingValue{}, &capability.NotFoundError{Kind: "container", Name: container}
	}
	obj, ok := c.objects[name]
	if !ok {
		return capability.IncomingValue{Data: bytes.NewReader(nil), Size: 0}, nil
	}
	data := sliceRange(obj.data, rng)
	return capability.IncomingValue{Data: bytes.NewReader(data), Size: uint64(len(data))}, nil
}

// sliceRange applies an inclusive byte range, clamped to the data bounds.
func sliceRange(data []byte, rng capability.ByteRange) []byte {
	size := uint64(len(data))
	if rng.First >= size || rng.Last < rng.First {
		return nil
	}
	last := rng.Last
	if last >= size {
		last = size - 1
	}
	return data[rng.First : last+1]
}

// HasObject implements capability.Blobstore.
func (b *Blobstore) HasObject(_ context.Context, container, name string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.containers[container]
	if !ok {
		return false, &capability.NotFoundError{Kind: "container", Name: container}
	}
	_, ok = c.objects[name]
	return ok, nil
}

// WriteData implements capability.Blobstore. The reader is drained fully
// before the object becomes visible.
func (b *Blobstore) WriteData(_ context.Context, container, name string, value io.Reader) error {
	data, err := io.ReadAll(value)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.containers[container]
	if !ok {
		return &capability.NotFoundError{Kind: "container", Name: container}
	}
	c.objects[name] = &memObject{data: data, createdAt: now()}
	return nil
}

// DeleteObjects implements capability.Blobstore. Absent names are ignored.
func (b *Blobstore) DeleteObjects(_ context.Context, container string, names []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.containers[container]
	if !ok {
		return &capability.NotFoundError{Kind: "container", Name: container}
	}
	for _, name := range names {
		delete(c.objects, name)
	}
	return nil
}

// ListObjects implements capability.Blobstore. The sequence is a snapshot of
// the names present at call time.
func (b *Blobstore) ListObjects(_ context.Context, container string) (capability.ObjectNames, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.containers[container]
	if !ok {
		return nil, &capability.NotFoundError{Kind: "container", Name: container}
	}
	names := make([]string, 0, len(c.objects))
	for name := range c.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return &sliceNames{names: names}, nil
}

type sliceNames struct {
	names []string
	pos   int
}

func (s *sliceNames) Next(_ context.Context) (string, error) {
	if s.pos >= len(s.names) {
		return "", io.EOF
	}
	name := s.names[s.pos]
	s.pos++
	return name, nil
}

// ObjectInfo implements capability.Blobstore.
func (b *Blobstore) ObjectInfo(_ context.Context, container, name string) (capability.ObjectMetadata, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.containers[container]
	if !ok {
		return capability.ObjectMetadata{}, &capability.NotFoundError{Kind: "container", Name: container}
	}
	obj, ok := c.objects[name]
	if !ok {
		return capability.ObjectMetadata{}, &capability.NotFoundError{Kind: "object", Name: name}
	}
	return capability.ObjectMetadata{
		Name:      name,
		Container: container,
		Size:      uint64(len(obj.data)),
		CreatedAt: obj.createdAt,
	}, nil
}

// ClearContainer implements capability.Blobstore via the snapshot composite.
func (b *Blobstore) ClearContainer(ctx context.Context, container string) error {
	return capability.ClearContainerSnapshot(ctx, b, container)
}
