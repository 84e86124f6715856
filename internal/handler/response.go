package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pos/internal/checkout"
	"pos/internal/crm"
	"pos/internal/service"
)

// LoginRoute is where the front end is sent when the session is gone.
const LoginRoute = "/login"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Field    string `json:"field,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	resp := ErrorResponse{Error: err.Error()}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}

	if code == http.StatusUnauthorized {
		resp.Redirect = LoginRoute
	}

	if detail := crm.DetailOf(err); detail != "" {
		resp.Error = detail
	}

	_ = c.Error(err)
	c.JSON(code, resp)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service, workflow and CRM errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var verr *service.ValidationError
	var apiErr *crm.APIError

	switch {
	// Validation errors - Bad Request
	case errors.As(err, &verr),
		errors.Is(err, checkout.ErrUnknownProduct),
		errors.Is(err, checkout.ErrMissingCard),
		errors.Is(err, checkout.ErrInvalidPaymentMethod):
		return http.StatusBadRequest

	// Session gone - the front end redirects to login
	case errors.Is(err, crm.ErrUnauthorized),
		errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, service.ErrReceiptNotFound),
		errors.Is(err, crm.ErrNoCards):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, checkout.ErrAdvanceInProgress),
		errors.Is(err, checkout.ErrClosed),
		errors.Is(err, service.ErrCardBusy):
		return http.StatusConflict

	// CRM answered with an error or not at all
	case errors.As(err, &apiErr),
		errors.Is(err, crm.ErrUnavailable),
		errors.Is(err, service.ErrCardRejected):
		return http.StatusBadGateway

	// Service unavailable
	case errors.Is(err, service.ErrJournalUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
