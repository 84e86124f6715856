package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pos/internal/checkout"
	"pos/internal/domain"
	"pos/internal/service"
)

// CheckoutHandler handles HTTP requests for the product checkout workflow.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	receiptService  *service.ReceiptService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutService *service.CheckoutService, receiptService *service.ReceiptService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		receiptService:  receiptService,
	}
}

// StartCheckoutRequest is the HTTP request body for starting a checkout.
type StartCheckoutRequest struct {
	Product string `json:"product"`
}

// PresentCardRequest is the HTTP request body for presenting a card.
type PresentCardRequest struct {
	CardID string `json:"card_id"`
}

// ProcessRequest is the HTTP request body for starting payment processing.
type ProcessRequest struct {
	PaymentMethod string `json:"payment_method"` // CASH or CARD
}

// CheckoutResponse is the HTTP response describing a checkout transaction.
type CheckoutResponse struct {
	ID            string  `json:"id"`
	State         string  `json:"state"`
	Screen        string  `json:"screen"`
	CardID        string  `json:"card_id,omitempty"`
	Product       string  `json:"product,omitempty"`
	Price         float64 `json:"price"`
	PriceLabel    string  `json:"price_label"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Status        string  `json:"status,omitempty"`
	Countdown     int     `json:"countdown,omitempty"`
	ReceiptID     string  `json:"receipt_id,omitempty"`
	Operator      string  `json:"operator,omitempty"`
	StartTime     string  `json:"start_time,omitempty"`
}

// ReceiptResponse is the HTTP response for a printed receipt.
type ReceiptResponse struct {
	ReceiptID     string  `json:"receipt_id"`
	CardID        string  `json:"card_id"`
	Product       string  `json:"product"`
	Amount        float64 `json:"amount"`
	AmountLabel   string  `json:"amount_label"`
	PaymentMethod string  `json:"payment_method"`
	Operator      string  `json:"operator,omitempty"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	Text          string  `json:"text"`
}

// PrintResponse is the HTTP response for POST /v1/checkout/:id/print.
type PrintResponse struct {
	Checkout CheckoutResponse `json:"checkout"`
	Receipt  ReceiptResponse  `json:"receipt"`
}

func toCheckoutResponse(snap checkout.Snapshot) CheckoutResponse {
	tx := snap.Tx
	response := CheckoutResponse{
		ID:            tx.ID,
		State:         string(snap.State),
		Screen:        snap.Screen(),
		CardID:        tx.CardID,
		Product:       tx.ProductTitle(),
		Price:         tx.Price().Float(),
		PriceLabel:    tx.Price().String(),
		PaymentMethod: string(tx.Method),
		Status:        tx.Status,
		Countdown:     tx.Countdown,
		ReceiptID:     tx.ReceiptID,
		Operator:      tx.Operator,
	}
	if tx.HasStartTime() {
		response.StartTime = tx.StartTime.UTC().Format(time.RFC3339)
	}
	return response
}

func (h *CheckoutHandler) toReceiptResponse(receipt domain.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ReceiptID:     receipt.ReceiptID,
		CardID:        receipt.CardID,
		Product:       receipt.Product,
		Amount:        receipt.Amount.Float(),
		AmountLabel:   receipt.Amount.String(),
		PaymentMethod: string(receipt.Method),
		Operator:      receipt.Operator,
		Date:          receipt.Date,
		Time:          receipt.Time,
		Text:          h.receiptService.FormatReceipt(receipt),
	}
}

// Start handles POST /v1/checkout
func (h *CheckoutHandler) Start(c *gin.Context) {
	var req StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	snap, err := h.checkoutService.Start(c.Request.Context(), req.Product)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toCheckoutResponse(snap))
}

// Get handles GET /v1/checkout/:id
func (h *CheckoutHandler) Get(c *gin.Context) {
	snap, err := h.checkoutService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toCheckoutResponse(snap))
}

// PresentCard handles POST /v1/checkout/:id/card
func (h *CheckoutHandler) PresentCard(c *gin.Context) {
	var req PresentCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	snap, err := h.checkoutService.PresentCard(c.Request.Context(), c.Param("id"), req.CardID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toCheckoutResponse(snap))
}

// Process handles POST /v1/checkout/:id/process
func (h *CheckoutHandler) Process(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	snap, err := h.checkoutService.Process(c.Request.Context(), c.Param("id"), domain.PaymentMethod(req.PaymentMethod))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusAccepted, toCheckoutResponse(snap))
}

// Cancel handles POST /v1/checkout/:id/cancel
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	snap, err := h.checkoutService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toCheckoutResponse(snap))
}

// Print handles POST /v1/checkout/:id/print
func (h *CheckoutHandler) Print(c *gin.Context) {
	receipt, snap, err := h.checkoutService.Print(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PrintResponse{
		Checkout: toCheckoutResponse(snap),
		Receipt:  h.toReceiptResponse(receipt),
	})
}

// Done handles POST /v1/checkout/:id/done
func (h *CheckoutHandler) Done(c *gin.Context) {
	snap, err := h.checkoutService.Done(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toCheckoutResponse(snap))
}

// Abandon handles DELETE /v1/checkout/:id
func (h *CheckoutHandler) Abandon(c *gin.Context) {
	if err := h.checkoutService.Abandon(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListReceipts handles GET /v1/receipts
func (h *CheckoutHandler) ListReceipts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	receipts, err := h.checkoutService.ListReceipts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		response = append(response, h.toReceiptResponse(*r))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetReceipt handles GET /v1/receipts/:id
func (h *CheckoutHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.checkoutService.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, h.toReceiptResponse(*receipt))
}
