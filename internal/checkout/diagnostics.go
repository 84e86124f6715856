package checkout

import (
	"time"

	"pos/internal/metrics"
)

// Task names a best-effort side effect.
type Task string

const (
	TaskAddProduct      Task = "add_product"
	TaskSimulatePayment Task = "simulate_payment"
	TaskFetchOperator   Task = "fetch_operator"
	TaskCreateTrip      Task = "create_trip"
)

// Diagnostic records a failed side effect.
type Diagnostic struct {
	TransactionID string
	Task          Task
	Err           error
	At            time.Time
}

// Diagnostics is a buffered, non-blocking channel of side-effect failures.
// Reports are dropped when nobody keeps up.
type Diagnostics struct {
	ch chan Diagnostic
}

// NewDiagnostics creates a Diagnostics channel buffering size reports.
func NewDiagnostics(size int) *Diagnostics {
	if size < 1 {
		size = 1
	}
	return &Diagnostics{ch: make(chan Diagnostic, size)}
}

// Report enqueues d without blocking. It returns false if d was dropped.
func (d *Diagnostics) Report(diag Diagnostic) bool {
	if d == nil {
		return false
	}
	select {
	case d.ch <- diag:
		return true
	default:
		metrics.CheckoutDiagnosticsDropped.Inc()
		return false
	}
}

// C returns the receive side of the channel.
func (d *Diagnostics) C() <-chan Diagnostic {
	return d.ch
}
