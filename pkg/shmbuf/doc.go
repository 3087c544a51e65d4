// Package shmbuf provides a generic, mutex-guarded, fixed-capacity
// buffer backed by an OS shared memory mapping.
//
// A Buffer[T] exposes two views of the same region: sequential stream
// access through a byte cursor (Write, Read, SetPosition, EOB) and
// random access to fixed-size elements of T (Get, Set). On top of the
// stream sit a length-prefixed string codec (WriteString, ReadString)
// and whole-region file persistence (SaveToFile, LoadFromFile).
//
// The element type must have a flat, fixed binary layout: numeric
// types, bools, and arrays/structs composed of them. Types carrying
// pointers are rejected at construction.
//
// Example usage:
//
//	buf, err := shmbuf.New[int64](ctx, 1024)
//	if err != nil {
//		// ...
//	}
//	defer buf.Close()
//
//	_ = buf.Set(0, 42)
//	v, _ := buf.Get(0)
//
// Buffers may be instrumented with OpenTelemetry through WithMeter and
// WithTracer; process-wide Prometheus counters are always recorded.
//
// Platform-specific mapping helpers are in internal/shm.
package shmbuf
