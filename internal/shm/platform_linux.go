//go:build linux

package shm

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/unix"
)

// MappedRegion represents a live shared memory mapping (Linux).
type MappedRegion struct {
	Data []byte
	Name string
	Size int

	fd   int
	path string
}

// MapRegion creates a fresh shared memory region under /dev/shm and
// maps it read-write (Linux implementation).
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	shmPath := filepath.Join("/dev/shm", opts.Name)
	if !canCreateOnDevShm(uint64(opts.Size), shmPath) {
		return nil, fmt.Errorf("not enough space left on /dev/shm, need %d bytes", opts.Size)
	}
	fd, err := unix.Open(shmPath, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", shmPath, err)
	}
	if err := unix.Ftruncate(fd, int64(opts.Size)); err != nil {
		_ = unix.Close(fd)
		_ = unix.Unlink(shmPath)
		return nil, fmt.Errorf("ftruncate: %w", err)
	}
	data, err := unix.Mmap(fd, 0, opts.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		_ = unix.Unlink(shmPath)
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return &MappedRegion{
		Data: data,
		Name: opts.Name,
		Size: opts.Size,
		fd:   fd,
		path: shmPath,
	}, nil
}

// UnmapRegion unmaps the region, closes its descriptor and unlinks the
// backing file (Linux implementation). Safe to call at most once.
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	if region == nil || region.Data == nil {
		return nil
	}
	if err := unix.Munmap(region.Data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	region.Data = nil
	if err := unix.Close(region.fd); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := unix.Unlink(region.path); err != nil {
		return fmt.Errorf("unlink %s: %w", region.path, err)
	}
	return nil
}

// canCreateOnDevShm reports whether /dev/shm has room for a region of
// the given size. Paths outside /dev/shm always pass.
func canCreateOnDevShm(size uint64, path string) bool {
	if !strings.HasPrefix(path, "/dev/shm") {
		return true
	}
	stat, err := disk.Usage("/dev/shm")
	if err != nil {
		return true
	}
	return stat.Free >= size
}
