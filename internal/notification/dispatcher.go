package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smallbiznis/zoonova/internal/observability/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is one unit of best-effort background work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// DispatcherConfig sizes the worker pool.
type DispatcherConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:    2,
		QueueSize:  256,
		JobTimeout: 30 * time.Second,
	}
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	defaults := DefaultDispatcherConfig()
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaults.QueueSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

// Dispatcher drains a bounded queue with a fixed number of workers.
// Enqueue never blocks; a full or stopped queue drops the job.
type Dispatcher struct {
	cfg     DispatcherConfig
	log     *zap.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	queue   chan Job
	closed  bool
	started bool

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewDispatcher(cfg DispatcherConfig, log *zap.Logger, m *metrics.Metrics) *Dispatcher {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		cfg:     cfg,
		log:     log.Named("notification.dispatcher"),
		metrics: m,
		queue:   make(chan Job, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	d.group = &errgroup.Group{}
	for i := 0; i < d.cfg.Workers; i++ {
		d.group.Go(func() error {
			for job := range d.queue {
				d.run(job)
			}
			return nil
		})
	}
	d.log.Info("dispatcher started",
		zap.Int("workers", d.cfg.Workers),
		zap.Int("queue_size", d.cfg.QueueSize),
	)
}

// Enqueue reports whether the job was accepted.
func (d *Dispatcher) Enqueue(job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("dispatcher stopped, job dropped", zap.String("job", job.Name))
		d.metrics.RecordNotification(context.Background(), job.Name, "dropped")
		return false
	}
	select {
	case d.queue <- job:
		return true
	default:
		d.log.Warn("notification queue full, job dropped", zap.String("job", job.Name))
		d.metrics.RecordNotification(context.Background(), job.Name, "dropped")
		return false
	}
}

// Stop closes the queue and waits for queued jobs until ctx is done. Jobs
// still running at that point see their context cancelled.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		d.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		d.log.Warn("dispatcher drain interrupted", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (d *Dispatcher) run(job Job) {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.JobTimeout)
	defer cancel()

	err := safeRun(ctx, job)
	if err != nil {
		d.log.Error("notification job failed", zap.String("job", job.Name), zap.Error(err))
		d.metrics.RecordNotification(ctx, job.Name, "failed")
		return
	}
	d.metrics.RecordNotification(ctx, job.Name, "sent")
}

func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.Run(ctx)
}
