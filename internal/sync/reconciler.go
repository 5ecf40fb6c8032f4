package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pool-tracker-service/internal/logging"
)

const defaultReconcileInterval = 5 * time.Minute

// Reconciler periodically reloads the collections from the backend, and
// reloads early whenever the service receives a change notification.
type Reconciler struct {
	service  *Service
	logger   *slog.Logger
	interval time.Duration

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the reconcile loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the reconciler has had a recent success and is not
// failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// NewReconciler constructs a Reconciler with sane defaults.
func NewReconciler(service *Service, logger *slog.Logger, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	return &Reconciler{
		service:  service,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins reconciling until the context is cancelled or Stop is called.
func (r *Reconciler) Start(ctx context.Context) {
	r.startMu.Lock()
	if r.started {
		r.startMu.Unlock()
		return
	}
	r.started = true
	r.startMu.Unlock()

	r.ticker = time.NewTicker(r.interval)

	go func() {
		logging.Info(r.logger, "reconciler started",
			logging.FieldDurationMS, r.interval.Milliseconds())
		// Initial load to warm the collections on boot.
		r.reconcileOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				r.stopTicker()
				logging.Info(r.logger, "reconciler stopped")
				return
			case <-r.done:
				r.stopTicker()
				logging.Info(r.logger, "reconciler stopped")
				return
			case <-r.service.ReconcileRequests():
				r.reconcileOnce(ctx)
			case <-r.ticker.C:
				r.reconcileOnce(ctx)
			}
		}
	}()
}

// Stop halts the reconcile loop.
func (r *Reconciler) Stop(ctx context.Context) error {
	_ = ctx
	r.stopOnce.Do(func() {
		close(r.done)
		r.stopTicker()
	})
	return nil
}

func (r *Reconciler) reconcileOnce(ctx context.Context) {
	start := time.Now()
	r.recordAttempt(start)
	err := r.service.Load(ctx)
	if err != nil {
		logging.Error(r.logger, "reconcile failed", err,
			logging.FieldBackend, r.service.Backend(),
			logging.FieldDurationMS, time.Since(start).Milliseconds())
		r.recordFailure(err, start)
		return
	}
	r.recordSuccess(start)
	logging.Info(r.logger, "collections reconciled",
		logging.FieldBackend, r.service.Backend(),
		logging.FieldDurationMS, time.Since(start).Milliseconds())
}

func (r *Reconciler) stopTicker() {
	if r.ticker != nil {
		r.ticker.Stop()
	}
}

func (r *Reconciler) recordAttempt(at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.LastAttempt = at
}

func (r *Reconciler) recordSuccess(at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.ConsecutiveFailures = 0
	r.status.LastError = ""
	r.status.LastSuccess = at
}

func (r *Reconciler) recordFailure(err error, at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.ConsecutiveFailures++
	if err != nil {
		r.status.LastError = err.Error()
	}
	r.status.LastAttempt = at
}

// Status returns a snapshot of the reconciler's recent health.
func (r *Reconciler) Status() Status {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	return r.status
}
