//go:build windows

package shm

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// MappedRegion represents a live shared memory mapping (Windows).
type MappedRegion struct {
	Data []byte
	Name string
	Size int

	handle windows.Handle
	addr   uintptr
}

// MapRegion creates a pagefile-backed file mapping and maps a read-write
// view of it (Windows implementation).
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	namePtr, err := windows.UTF16PtrFromString(opts.Name)
	if err != nil {
		return nil, fmt.Errorf("mapping name: %w", err)
	}
	size := uint64(opts.Size)
	handle, err := windows.CreateFileMapping(
		windows.InvalidHandle,
		nil,
		windows.PAGE_READWRITE,
		uint32(size>>32),
		uint32(size&0xffffffff),
		namePtr,
	)
	if err != nil {
		// On ERROR_ALREADY_EXISTS the call still hands back a live
		// handle to the existing object; close it before surfacing
		// the error.
		if handle != 0 {
			_ = windows.CloseHandle(handle)
		}
		return nil, fmt.Errorf("CreateFileMapping: %w", err)
	}
	addr, err := windows.MapViewOfFile(handle, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(opts.Size))
	if err != nil {
		_ = windows.CloseHandle(handle)
		return nil, fmt.Errorf("MapViewOfFile: %w", err)
	}
	return &MappedRegion{
		Data:   unsafe.Slice((*byte)(unsafe.Pointer(addr)), opts.Size),
		Name:   opts.Name,
		Size:   opts.Size,
		handle: handle,
		addr:   addr,
	}, nil
}

// UnmapRegion unmaps the view and closes the mapping handle (Windows
// implementation). Safe to call at most once.
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	if region == nil || region.Data == nil {
		return nil
	}
	region.Data = nil
	if err := windows.UnmapViewOfFile(region.addr); err != nil {
		return fmt.Errorf("UnmapViewOfFile: %w", err)
	}
	if err := windows.CloseHandle(region.handle); err != nil {
		return fmt.Errorf("CloseHandle: %w", err)
	}
	return nil
}
