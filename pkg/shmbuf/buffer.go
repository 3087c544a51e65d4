package shmbuf

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"
	"unsafe"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/shmbuf/api"
	"github.com/srediag/shmbuf/internal/logging"
	internalshm "github.com/srediag/shmbuf/internal/shm"
	"github.com/srediag/shmbuf/pkg/registry"
)

// Buffer is a fixed-capacity shared memory buffer of elements of T.
// All methods are safe for concurrent use; every operation on the
// region or the cursor holds the buffer's mutex for its full duration,
// so operations from different goroutines linearize and no torn
// element value is ever observable.
type Buffer[T any] struct {
	mu     sync.Mutex
	region *internalshm.MappedRegion
	data   []byte
	pos    int
	closed bool

	name      string
	sizeBytes int
	elemSize  int
	capElems  int

	tracer       trace.Tracer
	bytesWritten metric.Int64Counter
	bytesRead    metric.Int64Counter
	auditor      api.Auditor
	registry     *registry.Registry
}

// New allocates a shared memory region sized to elems elements of T and
// returns a buffer over it with the cursor at zero. It fails with
// ErrElementType if T is zero-sized or contains pointers, and with
// ErrAllocation if the OS denies the mapping.
func New[T any](ctx context.Context, elems int, opts ...Option) (*Buffer[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	elemSize := int(typ.Size())
	if elemSize == 0 || typeHasPointers(typ) {
		return nil, fmt.Errorf("%w: %s", ErrElementType, typ)
	}
	if elems <= 0 {
		return nil, fmt.Errorf("%w: element count %d", ErrRange, elems)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	name := cfg.name
	if name == "" {
		name = internalshm.GenerateName("shmbuf")
	}

	sizeBytes := elems * elemSize
	region, err := internalshm.MapRegion(ctx, internalshm.MapOptions{Name: name, Size: sizeBytes})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocation, err)
	}

	b := &Buffer[T]{
		region:    region,
		data:      region.Data,
		name:      name,
		sizeBytes: sizeBytes,
		elemSize:  elemSize,
		capElems:  elems,
		tracer:    cfg.tracer,
		auditor:   cfg.auditor,
		registry:  cfg.registry,
	}
	if cfg.meter != nil {
		b.bytesWritten, _ = cfg.meter.Int64Counter("shmbuf.bytes.written")
		b.bytesRead, _ = cfg.meter.Int64Counter("shmbuf.bytes.read")
	}

	allocationsTotal.Inc()
	liveRegions.Inc()
	mappedBytes.Add(float64(sizeBytes))
	if b.registry != nil {
		b.registry.Add(api.BufferInfo{
			Name:        name,
			SizeBytes:   sizeBytes,
			ElementSize: elemSize,
			CreatedAt:   time.Now(),
		})
	}
	b.audit(api.EventCreated, "")
	return b, nil
}

// typeHasPointers reports whether t's layout contains anything a raw
// bit copy would break: pointers, maps, chans, funcs, interfaces,
// slices, or strings, at any nesting depth.
func typeHasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return typeHasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if typeHasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Name returns the region's OS-level identifier. Diagnostic only.
func (b *Buffer[T]) Name() string { return b.name }

// Size returns the region length in bytes.
func (b *Buffer[T]) Size() int { return b.sizeBytes }

// Cap returns the buffer capacity in elements.
func (b *Buffer[T]) Cap() int { return b.capElems }

// ElementSize returns the byte size of one element.
func (b *Buffer[T]) ElementSize() int { return b.elemSize }

// Base returns the address of the start of the mapped region, for raw
// pointer interop. Writes through this address bypass the buffer's
// locking and bounds checks and are outside its concurrency contract.
// The address is invalid after Close.
func (b *Buffer[T]) Base() uintptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}
	return uintptr(unsafe.Pointer(&b.data[0]))
}

// Position returns the stream cursor, in bytes.
func (b *Buffer[T]) Position() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos
}

// SetPosition moves the stream cursor. It fails with ErrRange if pos is
// negative or past the end of the region; the cursor never clamps.
func (b *Buffer[T]) SetPosition(pos int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if pos < 0 || pos > b.sizeBytes {
		return fmt.Errorf("%w: position %d, size %d", ErrRange, pos, b.sizeBytes)
	}
	b.pos = pos
	return nil
}

// EOB reports whether the cursor is at or past the end of the region.
func (b *Buffer[T]) EOB() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos >= b.sizeBytes
}

// Write copies p into the region at the cursor and advances it,
// returning len(p). If p does not fit in the remaining space the write
// is refused whole: nothing is copied, the cursor does not move, and 0
// is returned. Truncation is detected by comparing the returned count
// against len(p), never through an error.
func (b *Buffer[T]) Write(p []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeLocked(p)
}

// WriteRange is Write over p[offset : offset+count]. It fails with
// ErrRange if the span exceeds p; the all-or-nothing policy against the
// buffer's own bound is unchanged and reported through the count.
func (b *Buffer[T]) WriteRange(p []byte, offset, count int) (int, error) {
	if offset < 0 || count < 0 || offset+count > len(p) {
		return 0, fmt.Errorf("%w: span [%d:%d] of %d-byte slice", ErrRange, offset, offset+count, len(p))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeLocked(p[offset : offset+count]), nil
}

func (b *Buffer[T]) writeLocked(p []byte) int {
	if b.closed {
		return 0
	}
	if b.pos+len(p) > b.sizeBytes {
		return 0
	}
	n := copy(b.data[b.pos:], p)
	b.pos += n
	if b.bytesWritten != nil {
		b.bytesWritten.Add(context.Background(), int64(n))
	}
	return n
}

// Read copies up to len(p) bytes from the region at the cursor into p
// and advances the cursor, returning the number of bytes read. Unlike
// Write, a read crossing the end of the region clamps to the remaining
// bytes and partially succeeds; callers probing near the end expect the
// short count.
func (b *Buffer[T]) Read(p []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readLocked(p)
}

// ReadRange is Read into p[offset : offset+count]. It fails with
// ErrRange if the span exceeds p; the clamping policy against the
// buffer's own bound is unchanged.
func (b *Buffer[T]) ReadRange(p []byte, offset, count int) (int, error) {
	if offset < 0 || count < 0 || offset+count > len(p) {
		return 0, fmt.Errorf("%w: span [%d:%d] of %d-byte slice", ErrRange, offset, offset+count, len(p))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readLocked(p[offset : offset+count]), nil
}

func (b *Buffer[T]) readLocked(p []byte) int {
	if b.closed {
		return 0
	}
	remain := b.sizeBytes - b.pos
	n := len(p)
	if n > remain {
		n = remain
	}
	copy(p[:n], b.data[b.pos:b.pos+n])
	b.pos += n
	if b.bytesRead != nil {
		b.bytesRead.Add(context.Background(), int64(n))
	}
	return n
}

// Get returns the element at index. The index addresses elements, not
// bytes; it fails with ErrRange at or beyond capacity.
func (b *Buffer[T]) Get(index int) (T, error) {
	var v T
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return v, ErrClosed
	}
	if index < 0 || index >= b.capElems {
		return v, fmt.Errorf("%w: index %d, capacity %d", ErrRange, index, b.capElems)
	}
	v = *(*T)(unsafe.Pointer(&b.data[index*b.elemSize]))
	return v, nil
}

// Set stores v at index as a raw bit-for-bit copy of exactly one
// element. It fails with ErrRange at or beyond capacity.
func (b *Buffer[T]) Set(index int, v T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if index < 0 || index >= b.capElems {
		return fmt.Errorf("%w: index %d, capacity %d", ErrRange, index, b.capElems)
	}
	*(*T)(unsafe.Pointer(&b.data[index*b.elemSize])) = v
	return nil
}

// Close releases the mapping and invalidates the buffer. It must be
// called exactly once; a second call fails with ErrClosed. After Close
// no operation may be used and Base addresses are invalid.
func (b *Buffer[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.closed = true
	b.data = nil
	if err := internalshm.UnmapRegion(context.Background(), b.region); err != nil {
		logging.Default.Warnf("release region %s: %v", b.name, err)
	}
	b.region = nil

	releasesTotal.Inc()
	liveRegions.Dec()
	mappedBytes.Sub(float64(b.sizeBytes))
	if b.registry != nil {
		b.registry.Remove(b.name)
	}
	b.audit(api.EventClosed, "")
	return nil
}

func (b *Buffer[T]) audit(kind api.EventKind, path string) {
	if b.auditor == nil {
		return
	}
	b.auditor.Record(api.Event{
		Kind:  kind,
		Name:  b.name,
		Bytes: b.sizeBytes,
		Path:  path,
		At:    time.Now(),
	})
}
