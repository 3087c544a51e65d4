package shmbuf

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/shmbuf/api"
)

// SaveToFile dumps the entire region (all Size() bytes, not just the
// bytes up to the cursor) to the file at path, creating or truncating
// it. The region is copied out under the guard so the dump is a
// consistent image, but the disk write itself happens after the guard
// is released. Filesystem failures surface as ErrIO.
func (b *Buffer[T]) SaveToFile(ctx context.Context, path string) error {
	if b.tracer != nil {
		_, span := b.tracer.Start(ctx, "shmbuf.SaveToFile")
		defer span.End()
	}
	scratch := bytebufferpool.Get()
	defer bytebufferpool.Put(scratch)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	scratch.B = append(scratch.B[:0], b.data...)
	b.mu.Unlock()

	if err := os.WriteFile(path, scratch.B, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	savesTotal.Inc()
	b.audit(api.EventSaved, path)
	return nil
}

// LoadFromFile reconstructs a buffer from a file produced by
// SaveToFile. The file carries no header; the only validation is that
// its length divides evenly by T's size, otherwise ErrFormat. The
// returned buffer is built through the normal allocation path, holds
// the file's entire content, starts with its cursor at zero, and is
// fully independent of the file after the call.
func LoadFromFile[T any](ctx context.Context, path string, opts ...Option) (*Buffer[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	elemSize := int(typ.Size())
	if elemSize == 0 || typeHasPointers(typ) {
		return nil, fmt.Errorf("%w: %s", ErrElementType, typ)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tracer != nil {
		var span trace.Span
		ctx, span = cfg.tracer.Start(ctx, "shmbuf.LoadFromFile")
		defer span.End()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	size := fi.Size()
	if size == 0 || size%int64(elemSize) != 0 {
		return nil, fmt.Errorf("%w: file is %d bytes, element size %d", ErrFormat, size, elemSize)
	}

	b, err := New[T](ctx, int(size)/elemSize, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(f, b.data); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	loadsTotal.Inc()
	b.audit(api.EventLoaded, path)
	return b, nil
}
