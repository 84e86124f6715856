package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"pos/internal/checkout"
	"pos/internal/domain"
	"pos/internal/metrics"
	"pos/internal/redis"
	"pos/internal/repository"
)

// CheckoutConfig holds the checkout timings.
type CheckoutConfig struct {
	Countdown         time.Duration
	Tick              time.Duration
	CardLockTTL       time.Duration
	SideEffectTimeout time.Duration
	IdleTimeout       time.Duration // untouched transactions are abandoned after this
}

// CheckoutService keeps the open checkout transactions of this terminal.
type CheckoutService struct {
	backend checkout.Backend
	locks   redis.LockStoreInterface
	journal repository.ReceiptJournal
	cfg     CheckoutConfig

	diagnostics *checkout.Diagnostics
	stop        chan struct{}
	stopOnce    sync.Once
	drained     chan struct{}
	swept       chan struct{}

	mu           sync.Mutex
	transactions map[string]*checkout.Machine
	cardLocks    map[string]string    // transaction id -> locked card id
	lastActive   map[string]time.Time // transaction id -> last request

	newID func() string
}

// NewCheckoutService creates a new CheckoutService, starts consuming
// side-effect diagnostics and starts the idle sweep. locks and journal may
// be nil.
func NewCheckoutService(
	backend checkout.Backend,
	locks redis.LockStoreInterface,
	journal repository.ReceiptJournal,
	cfg CheckoutConfig,
) *CheckoutService {
	if cfg.CardLockTTL <= 0 {
		cfg.CardLockTTL = 5 * time.Minute
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 2 * time.Minute
	}

	s := &CheckoutService{
		backend:      backend,
		locks:        locks,
		journal:      journal,
		cfg:          cfg,
		diagnostics:  checkout.NewDiagnostics(64),
		stop:         make(chan struct{}),
		drained:      make(chan struct{}),
		swept:        make(chan struct{}),
		transactions: make(map[string]*checkout.Machine),
		cardLocks:    make(map[string]string),
		lastActive:   make(map[string]time.Time),
		newID:        func() string { return uuid.New().String() },
	}

	go s.consumeDiagnostics()
	go s.sweepIdle()
	return s
}

func (s *CheckoutService) consumeDiagnostics() {
	defer close(s.drained)
	for {
		select {
		case d := <-s.diagnostics.C():
			s.logDiagnostic(d)
		case <-s.stop:
			for {
				select {
				case d := <-s.diagnostics.C():
					s.logDiagnostic(d)
				default:
					return
				}
			}
		}
	}
}

func (s *CheckoutService) logDiagnostic(d checkout.Diagnostic) {
	metrics.CheckoutSideEffectFailures.WithLabelValues(string(d.Task)).Inc()
	log.Printf("checkout %s: %s failed: %v", d.TransactionID, d.Task, d.Err)
}

func (s *CheckoutService) options() checkout.Options {
	return checkout.Options{
		Countdown:         s.cfg.Countdown,
		Tick:              s.cfg.Tick,
		SideEffectTimeout: s.cfg.SideEffectTimeout,
		Diagnostics:       s.diagnostics,
		OnTransition: func(from, to checkout.State, tx domain.TransactionContext) {
			metrics.CheckoutTransitions.WithLabelValues(string(from), string(to)).Inc()
		},
	}
}

// Start opens a transaction for the selected product.
func (s *CheckoutService) Start(ctx context.Context, product string) (checkout.Snapshot, error) {
	m := checkout.New(s.newID(), s.backend, s.options())

	snap, err := m.SelectProduct(product)
	if err != nil {
		m.Close()
		return checkout.Snapshot{}, err
	}

	s.mu.Lock()
	s.transactions[snap.Tx.ID] = m
	s.lastActive[snap.Tx.ID] = time.Now()
	s.mu.Unlock()
	metrics.ActiveTransactions.Inc()

	return snap, nil
}

// Get returns the current snapshot of a transaction.
func (s *CheckoutService) Get(ctx context.Context, id string) (checkout.Snapshot, error) {
	m, err := s.machine(id)
	if err != nil {
		return checkout.Snapshot{}, err
	}
	return m.Snapshot(), nil
}

// PresentCard attaches a card to the transaction. The card is locked for the
// life of the transaction so no other terminal can sell onto it meanwhile.
func (s *CheckoutService) PresentCard(ctx context.Context, id, cardID string) (checkout.Snapshot, error) {
	m, err := s.machine(id)
	if err != nil {
		return checkout.Snapshot{}, err
	}
	if cardID == "" {
		return checkout.Snapshot{}, checkout.ErrMissingCard
	}

	acquired, err := s.lockCard(ctx, id, cardID)
	if err != nil {
		return checkout.Snapshot{}, err
	}

	snap, err := m.PresentCard(cardID)
	if err != nil {
		if acquired {
			s.unlockCard(ctx, id)
		}
		return checkout.Snapshot{}, err
	}
	return snap, nil
}

// Process starts payment processing with method.
func (s *CheckoutService) Process(ctx context.Context, id string, method domain.PaymentMethod) (checkout.Snapshot, error) {
	m, err := s.machine(id)
	if err != nil {
		return checkout.Snapshot{}, err
	}
	return m.BeginProcessing(method)
}

// Cancel backs out of processing before the countdown elapses.
func (s *CheckoutService) Cancel(ctx context.Context, id string) (checkout.Snapshot, error) {
	m, err := s.machine(id)
	if err != nil {
		return checkout.Snapshot{}, err
	}
	return m.CancelProcessing()
}

// Print moves the transaction to printing and journals the receipt. A
// journal failure never blocks printing.
func (s *CheckoutService) Print(ctx context.Context, id string) (domain.Receipt, checkout.Snapshot, error) {
	m, err := s.machine(id)
	if err != nil {
		return domain.Receipt{}, checkout.Snapshot{}, err
	}

	receipt, snap, err := m.Print()
	if err != nil {
		return domain.Receipt{}, checkout.Snapshot{}, err
	}

	if s.journal != nil {
		if err := s.journal.Record(ctx, id, receipt); err != nil {
			log.Printf("checkout %s: failed to journal receipt %s: %v", id, receipt.ReceiptID, err)
		}
	}

	return receipt, snap, nil
}

// Done completes a printed transaction and releases it.
func (s *CheckoutService) Done(ctx context.Context, id string) (checkout.Snapshot, error) {
	m, err := s.machine(id)
	if err != nil {
		return checkout.Snapshot{}, err
	}

	snap, err := m.Done()
	if err != nil {
		return checkout.Snapshot{}, err
	}

	s.release(ctx, id)
	return snap, nil
}

// Abandon tears down a transaction in any state.
func (s *CheckoutService) Abandon(ctx context.Context, id string) error {
	if _, err := s.machine(id); err != nil {
		return err
	}
	s.release(ctx, id)
	return nil
}

// Shutdown closes every open transaction, waits for their detached tasks and
// stops the diagnostics consumer.
func (s *CheckoutService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.transactions))
	for id := range s.transactions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	machines := make([]*checkout.Machine, 0, len(ids))
	for _, id := range ids {
		if m := s.release(ctx, id); m != nil {
			machines = append(machines, m)
		}
	}

	waited := make(chan struct{})
	go func() {
		for _, m := range machines {
			m.Wait()
		}
		close(waited)
	}()

	select {
	case <-waited:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.stopOnce.Do(func() { close(s.stop) })
	<-s.drained
	<-s.swept
	return nil
}

// sweepIdle abandons transactions nobody has touched for IdleTimeout and
// keeps the card locks of the others from expiring. The sweep runs well
// inside both the idle timeout and the lock TTL.
func (s *CheckoutService) sweepIdle() {
	defer close(s.swept)

	ticker := time.NewTicker(min(s.cfg.IdleTimeout, s.cfg.CardLockTTL) / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireIdle(context.Background(), time.Now())
		case <-s.stop:
			return
		}
	}
}

func (s *CheckoutService) expireIdle(ctx context.Context, now time.Time) {
	cutoff := now.Add(-s.cfg.IdleTimeout)

	var idle []string
	held := make(map[string]string)

	s.mu.Lock()
	for id, at := range s.lastActive {
		if at.Before(cutoff) {
			idle = append(idle, id)
		} else if cardID, ok := s.cardLocks[id]; ok {
			held[id] = cardID
		}
	}
	s.mu.Unlock()

	for _, id := range idle {
		if s.release(ctx, id) != nil {
			log.Printf("checkout %s: abandoned after %s idle", id, s.cfg.IdleTimeout)
		}
	}

	if s.locks == nil {
		return
	}
	for id, cardID := range held {
		ok, err := s.locks.RefreshCardLock(ctx, cardID, id, s.cfg.CardLockTTL)
		switch {
		case err != nil:
			log.Printf("checkout %s: failed to refresh card lock: %v", id, err)
		case !ok:
			log.Printf("checkout %s: card lock on %s was lost", id, cardID)
		}
	}
}

func (s *CheckoutService) machine(id string) (*checkout.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.transactions[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	s.lastActive[id] = time.Now()
	return m, nil
}

// release removes, closes and unlocks a transaction. It returns the removed
// machine, or nil if it was already gone.
func (s *CheckoutService) release(ctx context.Context, id string) *checkout.Machine {
	s.mu.Lock()
	m, ok := s.transactions[id]
	delete(s.transactions, id)
	delete(s.lastActive, id)
	s.mu.Unlock()

	if !ok {
		return nil
	}

	m.Close()
	s.unlockCard(ctx, id)
	metrics.ActiveTransactions.Dec()
	return m
}

// lockCard takes the per-card lock for transaction id and reports whether
// this call acquired it. A transaction holds at most one card; presenting a
// different one is an invalid transition. Lock store errors fail open so a
// Redis outage never stops sales.
func (s *CheckoutService) lockCard(ctx context.Context, id, cardID string) (bool, error) {
	if s.locks == nil {
		return false, nil
	}

	s.mu.Lock()
	held := s.cardLocks[id]
	s.mu.Unlock()
	if held == cardID {
		return false, nil
	}
	if held != "" {
		return false, fmt.Errorf("%w: card %s already presented", checkout.ErrInvalidTransition, held)
	}

	ok, err := s.locks.AcquireCardLock(ctx, cardID, id, s.cfg.CardLockTTL)
	if err != nil {
		log.Printf("checkout %s: card lock unavailable, continuing: %v", id, err)
		return false, nil
	}
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrCardBusy, cardID)
	}

	s.mu.Lock()
	held, raced := s.cardLocks[id]
	if !raced {
		s.cardLocks[id] = cardID
	}
	s.mu.Unlock()

	if raced && held != cardID {
		// A concurrent request locked another card first; give ours back.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := s.locks.ReleaseCardLock(releaseCtx, cardID, id); err != nil {
			log.Printf("checkout %s: failed to release card lock: %v", id, err)
		}
		return false, fmt.Errorf("%w: card %s already presented", checkout.ErrInvalidTransition, held)
	}
	return !raced, nil
}

func (s *CheckoutService) unlockCard(ctx context.Context, id string) {
	s.mu.Lock()
	cardID, ok := s.cardLocks[id]
	delete(s.cardLocks, id)
	s.mu.Unlock()

	if !ok || s.locks == nil {
		return
	}

	// The request may be gone already; the lock must still be released.
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := s.locks.ReleaseCardLock(releaseCtx, cardID, id); err != nil {
		log.Printf("checkout %s: failed to release card lock: %v", id, err)
	}
}

// ListReceipts returns the most recently printed receipts.
func (s *CheckoutService) ListReceipts(ctx context.Context, limit int) ([]*domain.Receipt, error) {
	if s.journal == nil {
		return nil, ErrJournalUnavailable
	}
	return s.journal.List(ctx, limit)
}

// GetReceipt returns a printed receipt for reprinting.
func (s *CheckoutService) GetReceipt(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	if s.journal == nil {
		return nil, ErrJournalUnavailable
	}

	receipt, err := s.journal.GetByReceiptID(ctx, receiptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return receipt, nil
}
