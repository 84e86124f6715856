package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pos/internal/checkout"
	"pos/internal/domain"
)

func TestToCheckoutResponse_StartTimeRFC3339UTC(t *testing.T) {
	zone := time.FixedZone("AEST", 10*60*60)
	tx := domain.TransactionContext{ID: "tx-1"}.
		WithProduct(domain.NewProduct(domain.ProductSevenDayPass)).
		WithCard("4111000000000001", time.Date(2024, 3, 10, 0, 5, 0, 0, zone))

	resp := toCheckoutResponse(checkout.Snapshot{State: checkout.StateCardPresented, Tx: tx})

	assert.Equal(t, "2024-03-09T14:05:00Z", resp.StartTime)
	assert.Equal(t, "$25.00", resp.PriceLabel)
	assert.Equal(t, "/add-product-cardreader", resp.Screen)
}

func TestToCheckoutResponse_NoStartTime(t *testing.T) {
	resp := toCheckoutResponse(checkout.Snapshot{State: checkout.StateIdle, Tx: domain.TransactionContext{ID: "tx-1"}})
	assert.Empty(t, resp.StartTime)
}
