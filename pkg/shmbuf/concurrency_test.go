package shmbuf

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentDisjointIndexRanges(t *testing.T) {
	const (
		workers      = 8
		perWorker    = 64
		cyclesPerIdx = 50
	)
	b := newTestBuffer(t, workers*perWorker)
	defer func() { _ = b.Close() }()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			base := w * perWorker
			for cycle := 0; cycle < cyclesPerIdx; cycle++ {
				for i := 0; i < perWorker; i++ {
					want := int64(w)<<32 | int64(cycle)<<16 | int64(i)
					if err := b.Set(base+i, want); err != nil {
						t.Errorf("set(%d): %v", base+i, err)
						return
					}
					got, err := b.Get(base + i)
					if err != nil {
						t.Errorf("get(%d): %v", base+i, err)
						return
					}
					if got != want {
						t.Errorf("index %d: got %#x, want %#x", base+i, got, want)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

// wideElem is large enough that a torn write would be observable as a
// mix of the two patterns below.
type wideElem [8]uint64

func TestNoTornElementsUnderContention(t *testing.T) {
	b, err := New[wideElem](context.Background(), 4)
	if errors.Is(err, ErrAllocation) {
		t.Skipf("platform cannot map shared memory: %v", err)
	}
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	patterns := [2]wideElem{}
	for i := range patterns[0] {
		patterns[0][i] = 0xAAAAAAAAAAAAAAAA
		patterns[1][i] = 0x5555555555555555
	}
	require.NoError(t, b.Set(0, patterns[0]))

	const iterations = 2000
	var writers, readers sync.WaitGroup
	stop := make(chan struct{})

	for w := 0; w < 4; w++ {
		w := w
		writers.Add(1)
		go func() {
			defer writers.Done()
			for i := 0; i < iterations; i++ {
				if err := b.Set(0, patterns[(w+i)%2]); err != nil {
					t.Errorf("set: %v", err)
					return
				}
			}
		}()
	}
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				v, err := b.Get(0)
				if err != nil {
					t.Errorf("get: %v", err)
					return
				}
				first := v[0]
				for _, word := range v {
					if word != first {
						t.Errorf("torn element observed: %#x", v)
						return
					}
				}
			}
		}()
	}

	writers.Wait()
	close(stop)
	readers.Wait()
}

func TestConcurrentStreamAndIndexed(t *testing.T) {
	b := newTestBuffer(t, 256)
	defer func() { _ = b.Close() }()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = b.SetPosition(0)
			b.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if _, err := b.Get(100); err != nil {
				t.Errorf("get: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	v, err := b.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0x0807060504030201), v)
}
