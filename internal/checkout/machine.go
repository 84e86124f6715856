package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pos/internal/crm"
	"pos/internal/domain"
)

// Backend is the subset of the CRM the workflow calls.
type Backend interface {
	AddProduct(ctx context.Context, cardID, product string, value float64) (*crm.ProductResult, error)
	SimulatePayment(ctx context.Context, cardID string, amount float64, method string) (*crm.PaymentResult, error)
	RandomOperator(ctx context.Context) (string, error)
	CreateTrip(ctx context.Context, trip domain.TripRecord) error
}

// Status messages shown after processing.
const (
	StatusProductLoaded = "Product successfully loaded onto card."
	statusLoadFailed    = "Failed to load product"
	statusPaymentFailed = "Card payment failed"
)

// Options tunes a Machine. Zero values select the defaults.
type Options struct {
	Countdown         time.Duration // default 3s
	Tick              time.Duration // default 1s
	SideEffectTimeout time.Duration // default 10s
	Now               func() time.Time
	NewReceiptID      func() string
	Diagnostics       *Diagnostics
	OnTransition      func(from, to State, tx domain.TransactionContext)
}

func (o Options) withDefaults() Options {
	if o.Countdown <= 0 {
		o.Countdown = 3 * time.Second
	}
	if o.Tick <= 0 {
		o.Tick = time.Second
	}
	if o.SideEffectTimeout <= 0 {
		o.SideEffectTimeout = 10 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewReceiptID == nil {
		o.NewReceiptID = domain.NewReceiptID
	}
	return o
}

// Machine runs the checkout workflow for one transaction.
type Machine struct {
	backend Backend
	opts    Options

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup

	mu        sync.Mutex
	state     State
	tx        domain.TransactionContext
	countdown *Countdown
	gen       uint64
	closed    bool
}

// New creates an idle machine for transaction id.
func New(id string, backend Backend, opts Options) *Machine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		backend: backend,
		opts:    opts.withDefaults(),
		ctx:     ctx,
		cancel:  cancel,
		state:   StateIdle,
		tx:      domain.TransactionContext{ID: id},
	}
}

// ID returns the transaction id.
func (m *Machine) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx.ID
}

// Snapshot returns the current state and transaction context.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{State: m.state, Tx: m.tx}
}

// SelectProduct starts a sale for a catalog product.
func (m *Machine) SelectProduct(title string) (Snapshot, error) {
	if !domain.InCatalog(title) {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownProduct, title)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.expect(StateIdle); err != nil {
		return Snapshot{}, err
	}

	m.transition(StateProductSelected, m.tx.WithProduct(domain.NewProduct(title)))
	return m.snapshotLocked(), nil
}

// PresentCard records the presented card and the sale's start time.
func (m *Machine) PresentCard(cardID string) (Snapshot, error) {
	if cardID == "" {
		return Snapshot{}, ErrMissingCard
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.expect(StateProductSelected); err != nil {
		return Snapshot{}, err
	}

	m.transition(StateCardPresented, m.tx.WithCard(cardID, m.opts.Now()))
	return m.snapshotLocked(), nil
}

// BeginProcessing enters Processing and starts the countdown that advances
// to PaymentSuccess.
func (m *Machine) BeginProcessing(method domain.PaymentMethod) (Snapshot, error) {
	if !method.Valid() {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.expect(StateCardPresented); err != nil {
		return Snapshot{}, err
	}

	m.gen++
	gen := m.gen

	tx := m.tx.WithMethod(method).WithStatus("")
	m.transition(StateProcessing, tx)

	c := StartCountdown(m.opts.Countdown, m.opts.Tick,
		func(remaining int) { m.tick(gen, remaining) },
		func() { m.advance(gen) },
	)
	m.countdown = c
	m.tx = m.tx.WithCountdown(c.Remaining())

	m.tasks.Add(1)
	go func() {
		defer m.tasks.Done()
		<-c.Done()
	}()

	return m.snapshotLocked(), nil
}

// CancelProcessing leaves Processing for CardPresented before the countdown
// fires. The stopped countdown never advances the machine.
func (m *Machine) CancelProcessing() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.expect(StateProcessing); err != nil {
		return Snapshot{}, err
	}

	if m.countdown == nil || !m.countdown.Stop() {
		return Snapshot{}, ErrAdvanceInProgress
	}
	m.countdown = nil
	m.gen++

	m.transition(StateCardPresented, m.tx.WithCountdown(0))
	return m.snapshotLocked(), nil
}

// Print moves to Printing and returns the receipt to print.
func (m *Machine) Print() (domain.Receipt, Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.expect(StatePaymentSuccess); err != nil {
		return domain.Receipt{}, Snapshot{}, err
	}

	m.transition(StatePrinting, m.tx)
	return domain.NewReceipt(m.tx, m.opts.Now()), m.snapshotLocked(), nil
}

// Receipt re-renders the receipt while Printing.
func (m *Machine) Receipt() (domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.expect(StatePrinting); err != nil {
		return domain.Receipt{}, err
	}
	return domain.NewReceipt(m.tx, m.opts.Now()), nil
}

// Done finishes a printed sale and discards its context.
func (m *Machine) Done() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.expect(StatePrinting); err != nil {
		return Snapshot{}, err
	}

	m.transition(StateIdle, domain.TransactionContext{ID: m.tx.ID})
	return m.snapshotLocked(), nil
}

// Close tears the machine down. A running countdown is stopped and never
// advances. Detached tasks already started run to completion.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	if m.countdown != nil {
		m.countdown.Stop()
		m.countdown = nil
	}
	m.gen++
	m.cancel()
}

// Wait blocks until the countdown and every detached task have finished.
func (m *Machine) Wait() {
	m.tasks.Wait()
}

func (m *Machine) expect(want State) error {
	if m.closed {
		return ErrClosed
	}
	if m.state != want {
		return fmt.Errorf("%w: in %s, want %s", ErrInvalidTransition, m.state, want)
	}
	return nil
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{State: m.state, Tx: m.tx}
}

// transition must be called with m.mu held.
func (m *Machine) transition(to State, tx domain.TransactionContext) {
	from := m.state
	m.state = to
	m.tx = tx
	if m.opts.OnTransition != nil {
		m.opts.OnTransition(from, to, tx)
	}
}

func (m *Machine) tick(gen uint64, remaining int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.gen != gen || m.state != StateProcessing {
		return
	}
	m.tx = m.tx.WithCountdown(remaining)
}

// advance runs on the countdown goroutine once it fires.
func (m *Machine) advance(gen uint64) {
	m.mu.Lock()
	if m.closed || m.gen != gen || m.state != StateProcessing {
		m.mu.Unlock()
		return
	}
	m.countdown = nil
	m.tx = m.tx.WithCountdown(0)
	tx := m.tx
	m.mu.Unlock()

	status := m.chargeAndLoad(tx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.gen != gen || m.state != StateProcessing {
		return
	}

	tx = m.tx.WithStatus(status).WithReceiptID(m.opts.NewReceiptID())
	m.transition(StatePaymentSuccess, tx)

	m.tasks.Add(1)
	go m.recordSale(tx)
}

// chargeAndLoad performs the Processing side effects and returns the status
// to display. Failures are reported, never returned.
func (m *Machine) chargeAndLoad(tx domain.TransactionContext) string {
	ctx, cancel := context.WithTimeout(m.ctx, m.opts.SideEffectTimeout)
	defer cancel()

	price := tx.Price().Float()

	if tx.Method == domain.PaymentMethodCard {
		if _, err := m.backend.SimulatePayment(ctx, tx.CardID, price, "card"); err != nil {
			m.report(tx, TaskSimulatePayment, err)
			return failureStatus(statusPaymentFailed, err)
		}
	}

	if _, err := m.backend.AddProduct(ctx, tx.CardID, tx.ProductTitle(), price); err != nil {
		m.report(tx, TaskAddProduct, err)
		return failureStatus(statusLoadFailed, err)
	}
	return StatusProductLoaded
}

// recordSale is the detached PaymentSuccess task: fetch the operator, then
// submit the trip record. Nothing waits for it except Wait.
func (m *Machine) recordSale(tx domain.TransactionContext) {
	defer m.tasks.Done()

	ctx, cancel := context.WithTimeout(context.Background(), m.opts.SideEffectTimeout)
	defer cancel()

	operator, err := m.backend.RandomOperator(ctx)
	if err != nil {
		m.report(tx, TaskFetchOperator, err)
		operator = ""
	} else {
		m.setOperator(tx.ID, operator)
	}
	tx = tx.WithOperator(operator)

	record, ok := domain.NewTripRecord(tx, m.opts.Now())
	if !ok {
		return
	}
	if err := m.backend.CreateTrip(ctx, record); err != nil {
		m.report(tx, TaskCreateTrip, err)
	}
}

func (m *Machine) setOperator(txID, operator string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tx.ID != txID || (m.state != StatePaymentSuccess && m.state != StatePrinting) {
		return
	}
	m.tx = m.tx.WithOperator(operator)
}

func (m *Machine) report(tx domain.TransactionContext, task Task, err error) {
	m.opts.Diagnostics.Report(Diagnostic{
		TransactionID: tx.ID,
		Task:          task,
		Err:           err,
		At:            m.opts.Now(),
	})
}

func failureStatus(prefix string, err error) string {
	if detail := crm.DetailOf(err); detail != "" {
		return prefix + ": " + detail
	}
	return prefix
}
