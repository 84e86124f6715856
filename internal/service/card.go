package service

import (
	"context"
	"log"
	"strings"
	"time"

	"pos/internal/crm"
	"pos/internal/domain"
	"pos/internal/redis"
)

// CardBackend is the part of the CRM that manages cards and customers.
type CardBackend interface {
	IssueCard(ctx context.Context, req crm.IssueCardRequest) (*crm.IssuedCard, error)
	ReloadCard(ctx context.Context, cardID string, amount float64) (map[string]any, error)
	GetCardBalance(ctx context.Context, cardID string) (*domain.Balance, error)
	GetCardTransactions(ctx context.Context, cardID string) ([]domain.CardTransaction, error)
	ListCards(ctx context.Context) ([]domain.Card, error)
	RandomCard(ctx context.Context) (*domain.Card, error)
	SimulateCardTap(ctx context.Context, req crm.CardTapRequest) (map[string]any, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error)
	GetReportsSummary(ctx context.Context) (map[string]any, error)
}

// Terminal identifies the reader card taps are attributed to.
type Terminal struct {
	DeviceID string
	Location string
}

// fallbackCustomers fill the customer dropdown when the CRM is unreachable.
var fallbackCustomers = []domain.Customer{
	{ID: "C001", Name: "John Doe"},
	{ID: "C002", Name: "Jane Smith"},
}

// FormOptions are the dropdown choices of the card forms.
type FormOptions struct {
	Customers  []domain.Customer `json:"customers"`
	CardTypes  []string          `json:"card_types"`
	MediaTypes []string          `json:"media_types"`
	Fallback   bool              `json:"fallback"`
}

// TapRequest describes a simulated card tap.
type TapRequest struct {
	TransitMode string `json:"transit_mode"`
	Direction   string `json:"direction"`
}

// CardService handles card issuance, lookups and form data.
type CardService struct {
	backend  CardBackend
	cache    redis.CacheStoreInterface
	terminal Terminal
	now      func() time.Time
}

// NewCardService creates a new CardService. cache may be nil.
func NewCardService(backend CardBackend, cache redis.CacheStoreInterface, terminal Terminal) *CardService {
	return &CardService{
		backend:  backend,
		cache:    cache,
		terminal: terminal,
		now:      time.Now,
	}
}

// IssueCard issues a new card dated today.
func (s *CardService) IssueCard(ctx context.Context, form IssueCardForm) (*crm.IssuedCard, error) {
	form.normalize()
	if err := form.validate(); err != nil {
		return nil, err
	}

	return s.issue(ctx, crm.IssueCardRequest{
		CardID:     form.CardNumber,
		CardType:   form.MediaType,
		CustomerID: form.CustomerID,
		IssueDate:  s.now().Format(dateLayout),
	})
}

// RegisterCard registers an existing card with an explicit issue date.
func (s *CardService) RegisterCard(ctx context.Context, form RegisterCardForm) (*crm.IssuedCard, error) {
	form.normalize()
	if err := form.validate(); err != nil {
		return nil, err
	}

	return s.issue(ctx, crm.IssueCardRequest{
		CardID:     form.CardID,
		CardType:   form.CardType,
		CustomerID: form.CustomerID,
		IssueDate:  form.IssueDate,
	})
}

func (s *CardService) issue(ctx context.Context, req crm.IssueCardRequest) (*crm.IssuedCard, error) {
	card, err := s.backend.IssueCard(ctx, req)
	if err != nil {
		return nil, err
	}
	if card == nil || card.Identifier() == "" {
		return nil, ErrCardRejected
	}
	return card, nil
}

// Reload adds stored value to a card.
func (s *CardService) Reload(ctx context.Context, cardID string, amount float64) (map[string]any, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, required("card_id")
	}
	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "must be positive"}
	}
	return s.backend.ReloadCard(ctx, cardID, amount)
}

// Balance returns a card's balance.
func (s *CardService) Balance(ctx context.Context, cardID string) (*domain.Balance, error) {
	return s.backend.GetCardBalance(ctx, cardID)
}

// Transactions returns a card's transaction history.
func (s *CardService) Transactions(ctx context.Context, cardID string) ([]domain.CardTransaction, error) {
	return s.backend.GetCardTransactions(ctx, cardID)
}

// ListCards returns every card known to the CRM.
func (s *CardService) ListCards(ctx context.Context) ([]domain.Card, error) {
	return s.backend.ListCards(ctx)
}

// RandomCard picks a card to stand in for a physical tap.
func (s *CardService) RandomCard(ctx context.Context) (*domain.Card, error) {
	return s.backend.RandomCard(ctx)
}

// Tap simulates a card tap at this terminal.
func (s *CardService) Tap(ctx context.Context, cardID string, req TapRequest) (map[string]any, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, required("card_id")
	}
	if req.TransitMode == "" {
		req.TransitMode = domain.TransitModeCard
	}
	if req.Direction == "" {
		req.Direction = "entry"
	}

	return s.backend.SimulateCardTap(ctx, crm.CardTapRequest{
		CardID:      cardID,
		Location:    s.terminal.Location,
		DeviceID:    s.terminal.DeviceID,
		TransitMode: req.TransitMode,
		Direction:   req.Direction,
	})
}

// Customers returns the CRM customers, served from cache when fresh.
func (s *CardService) Customers(ctx context.Context) ([]domain.Customer, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCustomers(ctx)
		if err != nil {
			log.Printf("customer cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	customers, err := s.backend.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCustomers(ctx, customers); err != nil {
			log.Printf("customer cache write failed: %v", err)
		}
	}
	return customers, nil
}

// Customer returns one customer.
func (s *CardService) Customer(ctx context.Context, customerID string) (*domain.Customer, error) {
	return s.backend.GetCustomer(ctx, customerID)
}

// FormOptions returns the dropdown choices for the card forms. When the CRM
// cannot be reached the static fallback lists are returned instead.
func (s *CardService) FormOptions(ctx context.Context) FormOptions {
	opts := FormOptions{
		CardTypes:  domain.CardTypes,
		MediaTypes: domain.MediaTypes,
	}

	customers, err := s.Customers(ctx)
	if err != nil {
		log.Printf("loading customers failed, using fallback list: %v", err)
		opts.Customers = fallbackCustomers
		opts.Fallback = true
		return opts
	}

	opts.Customers = customers
	return opts
}

// ReportsSummary returns the CRM summary report.
func (s *CardService) ReportsSummary(ctx context.Context) (map[string]any, error) {
	return s.backend.GetReportsSummary(ctx)
}
