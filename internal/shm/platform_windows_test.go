//go:build windows

package shm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A colliding CreateFileMapping still returns a live handle to the
// existing object. If that handle were leaked, the kernel would keep
// the name alive past the first region's unmap and the final map here
// would fail.
func TestMapRegionCollisionReleasesHandle(t *testing.T) {
	ctx := context.Background()
	name := GenerateName("shmbuf-test")

	r1, err := MapRegion(ctx, MapOptions{Name: name, Size: 4096})
	require.NoError(t, err)

	_, err = MapRegion(ctx, MapOptions{Name: name, Size: 4096})
	assert.Error(t, err)

	require.NoError(t, UnmapRegion(ctx, r1))

	r2, err := MapRegion(ctx, MapOptions{Name: name, Size: 4096})
	require.NoError(t, err, "name should be free once all handles are closed")
	assert.NoError(t, UnmapRegion(ctx, r2))
}
