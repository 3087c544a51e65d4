package shmbuf

import (
	"encoding/binary"
	"unsafe"

	"github.com/valyala/bytebufferpool"
)

// The string wire format is a little-endian uint32 counting payload
// bytes, immediately followed by that many bytes of UTF-8, with no
// terminator.
const stringLenSize = 4

// WriteString encodes s at the cursor: the length prefix first, then,
// only for a non-empty string, the payload at the advanced position.
// Each of the two writes follows the stream's all-or-nothing policy,
// so the return value is 0 (nothing fit), stringLenSize (only the
// prefix fit), or stringLenSize+len(s). The whole encode runs under
// one guard acquisition, so concurrent writers cannot interleave
// between prefix and payload.
func (b *Buffer[T]) WriteString(s string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	var prefix [stringLenSize]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(s)))
	n := b.writeLocked(prefix[:])
	if n == 0 || len(s) == 0 {
		return n
	}
	return n + b.writeLocked(stringBytes(s))
}

// ReadString decodes a string at the cursor: the length prefix, then
// exactly that many bytes. It inherits the stream's clamping policy:
// a string straddling the end of the region silently comes back short,
// left to the caller to detect via EOB or length checks.
func (b *Buffer[T]) ReadString() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var prefix [stringLenSize]byte
	if b.readLocked(prefix[:]) < stringLenSize {
		return ""
	}
	count := int(binary.LittleEndian.Uint32(prefix[:]))
	// A corrupted prefix can claim far more bytes than the region
	// holds. Clamp before sizing the scratch buffer so the read never
	// allocates past the remaining capacity.
	if remain := b.sizeBytes - b.pos; count > remain {
		count = remain
	}
	if count == 0 {
		return ""
	}

	scratch := bytebufferpool.Get()
	defer bytebufferpool.Put(scratch)
	if cap(scratch.B) < count {
		scratch.B = make([]byte, count)
	}
	scratch.B = scratch.B[:count]
	n := b.readLocked(scratch.B)
	return string(scratch.B[:n])
}

// stringBytes views s as bytes without copying; the view is only read
// and only while the guard is held.
func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
