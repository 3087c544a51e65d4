package shmbuf

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mnoop "go.opentelemetry.io/otel/metric/noop"
	tnoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/srediag/shmbuf/api"
	"github.com/srediag/shmbuf/pkg/registry"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []api.Event
}

func (a *recordingAuditor) Record(e api.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAuditor) kinds() []api.EventKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	kinds := make([]api.EventKind, len(a.events))
	for i, e := range a.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func TestAuditorReceivesLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	auditor := &recordingAuditor{}

	b, err := New[int64](ctx, 8, WithAuditor(auditor))
	if errors.Is(err, ErrAllocation) {
		t.Skipf("platform cannot map shared memory: %v", err)
	}
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "audited.dump")
	require.NoError(t, b.SaveToFile(ctx, path))
	require.NoError(t, b.Close())

	loaded, err := LoadFromFile[int64](ctx, path, WithAuditor(auditor))
	require.NoError(t, err)
	require.NoError(t, loaded.Close())

	assert.Equal(t, []api.EventKind{
		api.EventCreated,
		api.EventSaved,
		api.EventClosed,
		api.EventCreated,
		api.EventLoaded,
		api.EventClosed,
	}, auditor.kinds())
}

func TestRegistryWiring(t *testing.T) {
	ctx := context.Background()
	reg := registry.New()

	b, err := New[int64](ctx, 8, WithRegistry(reg))
	if errors.Is(err, ErrAllocation) {
		t.Skipf("platform cannot map shared memory: %v", err)
	}
	require.NoError(t, err)

	info, ok := reg.Get(b.Name())
	require.True(t, ok)
	assert.Equal(t, b.Size(), info.SizeBytes)
	assert.Equal(t, b.ElementSize(), info.ElementSize)
	assert.Equal(t, 1, reg.Count())

	require.NoError(t, b.Close())
	assert.Equal(t, 0, reg.Count())
}

func TestDefaultRegistryTracksBuffers(t *testing.T) {
	before := registry.Default.Count()
	b := newTestBuffer(t, 4)
	assert.Equal(t, before+1, registry.Default.Count())
	require.NoError(t, b.Close())
	assert.Equal(t, before, registry.Default.Count())
}

func TestOTelInstrumentationIsOptional(t *testing.T) {
	ctx := context.Background()
	b, err := New[int64](ctx, 8,
		WithMeter(mnoop.NewMeterProvider().Meter("shmbuf-test")),
		WithTracer(tnoop.NewTracerProvider().Tracer("shmbuf-test")),
	)
	if errors.Is(err, ErrAllocation) {
		t.Skipf("platform cannot map shared memory: %v", err)
	}
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	assert.Equal(t, 8, b.Write([]byte("12345678")))
	require.NoError(t, b.SetPosition(0))
	assert.Equal(t, 8, b.Read(make([]byte, 8)))
	require.NoError(t, b.SaveToFile(ctx, filepath.Join(t.TempDir(), "traced.dump")))
}
