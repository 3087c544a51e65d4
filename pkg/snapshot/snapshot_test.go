package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srediag/shmbuf/pkg/shmbuf"
)

func TestSchedulerSnapshotsPeriodically(t *testing.T) {
	ctx := context.Background()
	b, err := shmbuf.New[int64](ctx, 16)
	if errors.Is(err, shmbuf.ErrAllocation) {
		t.Skipf("platform cannot map shared memory: %v", err)
	}
	require.NoError(t, err)
	defer func() { _ = b.Close() }()
	require.NoError(t, b.Set(0, 99))

	path := filepath.Join(t.TempDir(), "periodic.dump")
	sched, err := NewScheduler(2, 20*time.Millisecond)
	require.NoError(t, err)
	sched.Add(b, path)
	sched.Start(ctx)

	require.Eventually(t, func() bool {
		fi, err := os.Stat(path)
		return err == nil && fi.Size() == int64(b.Size())
	}, 2*time.Second, 10*time.Millisecond)
	sched.Stop()

	loaded, err := shmbuf.LoadFromFile[int64](ctx, path)
	require.NoError(t, err)
	defer func() { _ = loaded.Close() }()
	v, err := loaded.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int64(99), v)
}

func TestSchedulerSkipsClosedBuffer(t *testing.T) {
	ctx := context.Background()
	b, err := shmbuf.New[int64](ctx, 4)
	if errors.Is(err, shmbuf.ErrAllocation) {
		t.Skipf("platform cannot map shared memory: %v", err)
	}
	require.NoError(t, err)
	require.NoError(t, b.Close())

	path := filepath.Join(t.TempDir(), "closed.dump")
	sched, err := NewScheduler(1, 10*time.Millisecond)
	require.NoError(t, err)
	sched.Add(b, path)
	sched.Start(ctx)
	time.Sleep(100 * time.Millisecond)
	sched.Stop()

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "closed buffer must never be dumped")
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	sched, err := NewScheduler(1, time.Second)
	require.NoError(t, err)
	sched.Stop()
}
