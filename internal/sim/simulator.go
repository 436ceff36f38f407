// Package sim drives the simulated backend behavior: payment
// confirmation after a fixed processing delay, and shipment progression
// through its stages at randomized intervals. Each order has at most one
// armed timer at a time, tracked in a task registry keyed by order id.
package sim

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Lifecycle is the subset of the shop the simulator drives.
type Lifecycle interface {
	ConfirmPayment(ctx context.Context, orderID string) error
	AdvanceShipment(ctx context.Context, orderID string) (more bool, err error)
	PendingShipments() []string
}

// Config controls the simulated delays. Each jitter is the upper bound of
// a uniform random addition to its base delay.
type Config struct {
	PaymentDelay time.Duration

	InitialDelay  time.Duration
	InitialJitter time.Duration
	StageDelay    time.Duration
	StageJitter   time.Duration
	ResumeDelay   time.Duration
	ResumeJitter  time.Duration
}

// Simulator schedules per-order timer chains. Stage advancements for one
// order are strictly sequential: the next timer is armed only after the
// previous advancement has been applied and persisted.
type Simulator struct {
	cfg    Config
	orders Lifecycle
	lg     *zap.Logger

	mu      sync.Mutex
	tasks   map[string]*time.Timer
	stopped bool
}

// New returns a Simulator driving the given order lifecycle.
func New(cfg Config, orders Lifecycle, lg *zap.Logger) *Simulator {
	return &Simulator{
		cfg:    cfg,
		orders: orders,
		lg:     lg,
		tasks:  make(map[string]*time.Timer),
	}
}

// SchedulePayment arms the payment-confirmation timer for a newly placed
// order. Once payment is confirmed, the shipment advancement chain
// begins. An order that already has an armed task is left alone.
func (s *Simulator) SchedulePayment(orderID string) {
	s.schedule(orderID, s.cfg.PaymentDelay, s.confirm)
}

// Resume re-arms the advancement chain for every persisted order whose
// shipment has not reached its final stage, exactly one task per order,
// each with a short staggered initial delay. It returns the number of
// chains armed.
func (s *Simulator) Resume() int {
	n := 0
	for _, id := range s.orders.PendingShipments() {
		if s.schedule(id, s.delay(s.cfg.ResumeDelay, s.cfg.ResumeJitter), s.advance) {
			n++
		}
	}
	if n > 0 {
		s.lg.Info("resumed shipment simulations", zap.Int("count", n))
	}
	return n
}

// Run blocks until the context is cancelled, then stops all armed timers.
// Persisted state stays resumable on the next start.
func (s *Simulator) Run(ctx context.Context) error {
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop cancels every armed timer and rejects further scheduling.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	for id, t := range s.tasks {
		t.Stop()
		delete(s.tasks, id)
	}
}

// Active returns the number of currently armed tasks.
func (s *Simulator) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// schedule arms a timer for the order unless one is already armed or the
// simulator is stopped. The registry presence check is the double-arming
// guard for resumption.
func (s *Simulator) schedule(orderID string, d time.Duration, step func(orderID string)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	if _, armed := s.tasks[orderID]; armed {
		return false
	}
	s.tasks[orderID] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.tasks, orderID)
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return
		}
		step(orderID)
	})
	return true
}

func (s *Simulator) confirm(orderID string) {
	if err := s.orders.ConfirmPayment(context.Background(), orderID); err != nil {
		s.lg.Error("payment confirmation failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		return
	}
	s.schedule(orderID, s.delay(s.cfg.InitialDelay, s.cfg.InitialJitter), s.advance)
}

func (s *Simulator) advance(orderID string) {
	more, err := s.orders.AdvanceShipment(context.Background(), orderID)
	if err != nil {
		s.lg.Error("shipment advancement failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		return
	}
	if more {
		s.schedule(orderID, s.delay(s.cfg.StageDelay, s.cfg.StageJitter), s.advance)
		return
	}
	s.lg.Info("shipment delivered", zap.String("order_id", orderID))
}

func (s *Simulator) delay(base, jitter time.Duration) time.Duration {
	if jitter > 0 {
		base += rand.N(jitter)
	}
	return base
}
