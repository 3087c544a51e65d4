// Package shm contains the platform-specific shared memory mapping used
// by pkg/shmbuf. A region is a named, page-backed, read-write block;
// callers own exactly one mapping per region and release it once.
package shm

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"sync/atomic"
)

// MapOptions defines options for mapping shared memory.
type MapOptions struct {
	// Name identifies the region at the OS level. It must be unique
	// within the process; GenerateName produces suitable values.
	Name string
	// Size is the region length in bytes.
	Size int
}

var nameSeq atomic.Uint64

// GenerateName returns a process-unique region name. The name is a
// diagnostic handle only; nothing in this module attaches to an
// existing region by name.
func GenerateName(prefix string) string {
	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		// Sequence number alone still guarantees process uniqueness.
		return fmt.Sprintf("%s-%d-%d", prefix, os.Getpid(), nameSeq.Add(1))
	}
	return fmt.Sprintf("%s-%d-%d-%s", prefix, os.Getpid(), nameSeq.Add(1), hex.EncodeToString(suffix[:]))
}
