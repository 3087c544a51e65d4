package shmbuf

import "errors"

var (
	// ErrAllocation reports that the OS refused to create or map the
	// shared memory region. No instance exists after this error.
	ErrAllocation = errors.New("shmbuf: shared memory allocation failed")

	// ErrRange reports an out-of-bounds access: a cursor set past the
	// end, an element index at or beyond capacity, or a byte-range
	// overload whose span exceeds the supplied slice.
	ErrRange = errors.New("shmbuf: out of range")

	// ErrFormat reports that a file's length is not a multiple of the
	// element size on load.
	ErrFormat = errors.New("shmbuf: file length is not a multiple of element size")

	// ErrIO reports a filesystem failure during save or load.
	ErrIO = errors.New("shmbuf: file i/o failed")

	// ErrElementType reports an element type unsuitable for raw bit
	// copies: zero-sized, or carrying pointers (pointers, maps, chans,
	// funcs, interfaces, slices, strings) anywhere in its layout.
	ErrElementType = errors.New("shmbuf: element type is not flat and fixed-size")

	// ErrClosed reports use of a buffer after Close.
	ErrClosed = errors.New("shmbuf: buffer is closed")
)
