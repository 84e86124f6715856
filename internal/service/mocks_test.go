package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"pos/internal/crm"
	"pos/internal/domain"
	"pos/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK SESSION STORE
// ──────────────────────────────────────────────

type mockSessionStore struct {
	mu      sync.Mutex
	session domain.Session
	saveErr error
}

func (m *mockSessionStore) Load(ctx context.Context) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *mockSessionStore) Save(ctx context.Context, session domain.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
	return nil
}

func (m *mockSessionStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = domain.Session{}
	return nil
}

// ──────────────────────────────────────────────
// MOCK CRM
// ──────────────────────────────────────────────

type mockCRM struct {
	mu sync.Mutex

	authResult   *crm.AuthResult
	authErr      error
	lastEmail    string
	lastPassword string
	lastName     string

	issued     *crm.IssuedCard
	issueErr   error
	lastIssue  crm.IssueCardRequest
	customers  []domain.Customer
	custErr    error
	custCalls  int
	lastTap    crm.CardTapRequest
	reloadedBy float64

	operator  string
	trips     []domain.TripRecord
	loads     int
	loadErr   error
	payments  int
	summary   map[string]any
	randomErr error
}

func (m *mockCRM) Login(ctx context.Context, email, password string) (*crm.AuthResult, error) {
	m.lastEmail = email
	m.lastPassword = password
	return m.authResult, m.authErr
}

func (m *mockCRM) Signup(ctx context.Context, email, password, name string) (*crm.AuthResult, error) {
	m.lastEmail = email
	m.lastPassword = password
	m.lastName = name
	return m.authResult, m.authErr
}

func (m *mockCRM) IssueCard(ctx context.Context, req crm.IssueCardRequest) (*crm.IssuedCard, error) {
	m.lastIssue = req
	return m.issued, m.issueErr
}

func (m *mockCRM) ReloadCard(ctx context.Context, cardID string, amount float64) (map[string]any, error) {
	m.reloadedBy = amount
	return map[string]any{"card_id": cardID}, nil
}

func (m *mockCRM) GetCardBalance(ctx context.Context, cardID string) (*domain.Balance, error) {
	return &domain.Balance{CardID: cardID, Balance: 12.5}, nil
}

func (m *mockCRM) GetCardTransactions(ctx context.Context, cardID string) ([]domain.CardTransaction, error) {
	return []domain.CardTransaction{{ID: "t1", CardID: cardID}}, nil
}

func (m *mockCRM) ListCards(ctx context.Context) ([]domain.Card, error) {
	return []domain.Card{{ID: "c1"}}, nil
}

func (m *mockCRM) RandomCard(ctx context.Context) (*domain.Card, error) {
	if m.randomErr != nil {
		return nil, m.randomErr
	}
	return &domain.Card{ID: "c1", CardNumber: "c1"}, nil
}

func (m *mockCRM) SimulateCardTap(ctx context.Context, req crm.CardTapRequest) (map[string]any, error) {
	m.lastTap = req
	return map[string]any{"ok": true}, nil
}

func (m *mockCRM) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.custCalls++
	return m.customers, m.custErr
}

func (m *mockCRM) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	return &domain.Customer{ID: customerID}, nil
}

func (m *mockCRM) GetReportsSummary(ctx context.Context) (map[string]any, error) {
	return m.summary, nil
}

func (m *mockCRM) AddProduct(ctx context.Context, cardID, product string, value float64) (*crm.ProductResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return &crm.ProductResult{Status: "success"}, nil
}

func (m *mockCRM) SimulatePayment(ctx context.Context, cardID string, amount float64, method string) (*crm.PaymentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments++
	return &crm.PaymentResult{Status: "approved"}, nil
}

func (m *mockCRM) RandomOperator(ctx context.Context) (string, error) {
	return m.operator, nil
}

func (m *mockCRM) CreateTrip(ctx context.Context, trip domain.TripRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips = append(m.trips, trip)
	return nil
}

func (m *mockCRM) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

type mockLockStore struct {
	mu         sync.Mutex
	owners     map[string]string
	acquireErr error
	released   []string
	refreshes  int
}

func newMockLockStore() *mockLockStore {
	return &mockLockStore{owners: make(map[string]string)}
}

func (m *mockLockStore) AcquireCardLock(ctx context.Context, cardID, owner string, ttl time.Duration) (bool, error) {
	if m.acquireErr != nil {
		return false, m.acquireErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.owners[cardID]; ok && current != owner {
		return false, nil
	}
	m.owners[cardID] = owner
	return true, nil
}

func (m *mockLockStore) RefreshCardLock(ctx context.Context, cardID, owner string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	return m.owners[cardID] == owner, nil
}

func (m *mockLockStore) refreshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshes
}

func (m *mockLockStore) ReleaseCardLock(ctx context.Context, cardID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owners[cardID] == owner {
		delete(m.owners, cardID)
	}
	m.released = append(m.released, cardID)
	return nil
}

func (m *mockLockStore) owner(cardID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owners[cardID]
}

// ──────────────────────────────────────────────
// MOCK RECEIPT JOURNAL
// ──────────────────────────────────────────────

type mockJournal struct {
	mu        sync.Mutex
	receipts  map[string]domain.Receipt
	recordErr error
}

func newMockJournal() *mockJournal {
	return &mockJournal{receipts: make(map[string]domain.Receipt)}
}

func (m *mockJournal) Record(ctx context.Context, transactionID string, receipt domain.Receipt) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.receipts[receipt.ReceiptID]; !ok {
		m.receipts[receipt.ReceiptID] = receipt
	}
	return nil
}

func (m *mockJournal) GetByReceiptID(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.receipts[receiptID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (m *mockJournal) List(ctx context.Context, limit int) ([]*domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Receipt, 0, len(m.receipts))
	for _, r := range m.receipts {
		r := r
		out = append(out, &r)
	}
	return out, nil
}

var errBoom = errors.New("boom")
