package notification

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func newTestDispatcher(workers, queue int) *Dispatcher {
	return NewDispatcher(DispatcherConfig{Workers: workers, QueueSize: queue, JobTimeout: time.Second}, zap.NewNop(), nil)
}

func TestDispatcherDrainsOnStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := newTestDispatcher(2, 16)
	d.Start()

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		ok := d.Enqueue(Job{Name: "count", Run: func(context.Context) error {
			ran.Add(1)
			return nil
		}})
		require.True(t, ok)
	}

	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, int32(10), ran.Load())
	assert.False(t, d.Enqueue(Job{Name: "late", Run: func(context.Context) error { return nil }}))
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := newTestDispatcher(1, 1)
	var ran atomic.Int32
	job := Job{Name: "count", Run: func(context.Context) error {
		ran.Add(1)
		return nil
	}}

	assert.True(t, d.Enqueue(job))
	assert.False(t, d.Enqueue(job))

	d.Start()
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, int32(1), ran.Load())
}

func TestDispatcherStopTimeoutCancelsJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := newTestDispatcher(1, 4)
	d.Start()

	started := make(chan struct{})
	var cancelled atomic.Bool
	d.Enqueue(Job{Name: "slow", Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, cancelled.Load())
}

func TestDispatcherSurvivesFailingJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := newTestDispatcher(1, 4)
	d.Start()

	var ran atomic.Int32
	d.Enqueue(Job{Name: "panic", Run: func(context.Context) error { panic("boom") }})
	d.Enqueue(Job{Name: "error", Run: func(context.Context) error { return errors.New("smtp down") }})
	d.Enqueue(Job{Name: "ok", Run: func(context.Context) error {
		ran.Add(1)
		return nil
	}})

	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, int32(1), ran.Load())
}

func TestDispatcherStopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := newTestDispatcher(2, 2)
	require.NoError(t, d.Stop(context.Background()))
	require.NoError(t, d.Stop(context.Background()))
	d.Start()
	assert.False(t, d.Enqueue(Job{Name: "late", Run: func(context.Context) error { return nil }}))
}
