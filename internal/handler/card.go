package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos/internal/domain"
	"pos/internal/service"
)

// CardHandler handles HTTP requests for cards, customers and form data.
type CardHandler struct {
	cardService *service.CardService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService *service.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// ProductResponse is a catalog entry.
type ProductResponse struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Label string  `json:"label"`
}

// CatalogResponse is the HTTP response for GET /v1/catalog.
type CatalogResponse struct {
	Products   []ProductResponse `json:"products"`
	MediaTypes []string          `json:"media_types"`
	CardTypes  []string          `json:"card_types"`
}

// IssuedCardResponse is the HTTP response for an issued or registered card.
type IssuedCardResponse struct {
	ID         string `json:"id"`
	CardType   string `json:"card_type"`
	CustomerID string `json:"customer_id"`
	IssueDate  string `json:"issue_date"`
	Message    string `json:"message"`
}

// ReloadRequest is the HTTP request body for reloading a card.
type ReloadRequest struct {
	Amount float64 `json:"amount"`
}

// Catalog handles GET /v1/catalog
func (h *CardHandler) Catalog(c *gin.Context) {
	products := domain.Products()
	response := CatalogResponse{
		Products:   make([]ProductResponse, 0, len(products)),
		MediaTypes: domain.MediaTypes,
		CardTypes:  domain.CardTypes,
	}
	for _, p := range products {
		response.Products = append(response.Products, ProductResponse{
			Title: p.Title,
			Price: p.Price.InexactFloat64(),
			Label: domain.FormatMoney(p.Price),
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// IssueCard handles POST /v1/cards/issue
func (h *CardHandler) IssueCard(c *gin.Context) {
	var req service.IssueCardForm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	card, err := h.cardService.IssueCard(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, IssuedCardResponse{
		ID:         card.Identifier(),
		CardType:   card.CardType,
		CustomerID: card.CustomerID,
		IssueDate:  card.IssueDate,
		Message:    "Card issued successfully!",
	})
}

// RegisterCard handles POST /v1/cards/register
func (h *CardHandler) RegisterCard(c *gin.Context) {
	var req service.RegisterCardForm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	card, err := h.cardService.RegisterCard(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, IssuedCardResponse{
		ID:         card.Identifier(),
		CardType:   card.CardType,
		CustomerID: card.CustomerID,
		IssueDate:  card.IssueDate,
		Message:    "Card registered successfully!",
	})
}

// GetAll handles GET /v1/cards
func (h *CardHandler) GetAll(c *gin.Context) {
	cards, err := h.cardService.ListCards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, cards)
}

// Random handles GET /v1/cards/random
func (h *CardHandler) Random(c *gin.Context) {
	card, err := h.cardService.RandomCard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, card)
}

// Balance handles GET /v1/cards/:id/balance
func (h *CardHandler) Balance(c *gin.Context) {
	balance, err := h.cardService.Balance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, balance)
}

// Transactions handles GET /v1/cards/:id/transactions
func (h *CardHandler) Transactions(c *gin.Context) {
	txns, err := h.cardService.Transactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, txns)
}

// Reload handles POST /v1/cards/:id/reload
func (h *CardHandler) Reload(c *gin.Context) {
	var req ReloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.cardService.Reload(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, result)
}

// Tap handles POST /v1/cards/:id/tap
func (h *CardHandler) Tap(c *gin.Context) {
	var req service.TapRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	result, err := h.cardService.Tap(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, result)
}

// Customers handles GET /v1/customers
func (h *CardHandler) Customers(c *gin.Context) {
	customers, err := h.cardService.Customers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, customers)
}

// Customer handles GET /v1/customers/:id
func (h *CardHandler) Customer(c *gin.Context) {
	customer, err := h.cardService.Customer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, customer)
}

// FormOptions handles GET /v1/forms/options
func (h *CardHandler) FormOptions(c *gin.Context) {
	respondJSON(c, http.StatusOK, h.cardService.FormOptions(c.Request.Context()))
}

// ReportsSummary handles GET /v1/reports/summary
func (h *CardHandler) ReportsSummary(c *gin.Context) {
	summary, err := h.cardService.ReportsSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, summary)
}
