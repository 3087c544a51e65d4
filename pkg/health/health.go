// Package health exposes liveness/readiness checks for processes
// hosting shared memory buffers.
package health

import (
	"fmt"
	"runtime"

	"github.com/heptiolabs/healthcheck"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/srediag/shmbuf/pkg/registry"
)

// Options bound the checks added by NewHandler.
type Options struct {
	// MaxLiveBuffers fails readiness when the registry tracks more
	// live buffers than this. Zero means 1024.
	MaxLiveBuffers int
	// MinShmFreeBytes fails readiness when /dev/shm has less free
	// space than this. Zero means 64 MiB. Ignored off Linux.
	MinShmFreeBytes uint64
	// MaxGoroutines fails liveness above this count. Zero means 10000.
	MaxGoroutines int
}

// NewHandler builds a healthcheck handler wired to reg. The handler
// serves /live and /ready and is mountable on any mux.
func NewHandler(reg *registry.Registry, opts Options) healthcheck.Handler {
	if opts.MaxLiveBuffers == 0 {
		opts.MaxLiveBuffers = 1024
	}
	if opts.MinShmFreeBytes == 0 {
		opts.MinShmFreeBytes = 64 << 20
	}
	if opts.MaxGoroutines == 0 {
		opts.MaxGoroutines = 10000
	}

	h := healthcheck.NewHandler()
	h.AddLivenessCheck("goroutine-count", healthcheck.GoroutineCountCheck(opts.MaxGoroutines))
	h.AddReadinessCheck("live-buffers", LiveBufferCheck(reg, opts.MaxLiveBuffers))
	h.AddReadinessCheck("shm-free-space", ShmFreeSpaceCheck(opts.MinShmFreeBytes))
	return h
}

// LiveBufferCheck fails when reg tracks more than maxBuffers live
// buffers, a sign of leaked Close calls.
func LiveBufferCheck(reg *registry.Registry, maxBuffers int) healthcheck.Check {
	return func() error {
		if n := reg.Count(); n > maxBuffers {
			return fmt.Errorf("%d live buffers, ceiling %d", n, maxBuffers)
		}
		return nil
	}
}

// ShmFreeSpaceCheck fails when /dev/shm has less than minFree bytes
// available. It passes on platforms without /dev/shm.
func ShmFreeSpaceCheck(minFree uint64) healthcheck.Check {
	return func() error {
		if runtime.GOOS != "linux" {
			return nil
		}
		stat, err := disk.Usage("/dev/shm")
		if err != nil {
			return nil
		}
		if stat.Free < minFree {
			return fmt.Errorf("/dev/shm has %d bytes free, need %d", stat.Free, minFree)
		}
		return nil
	}
}
