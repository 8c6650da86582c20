package services

import (
	"fmt"

	"bouquetStore/models"
)

const (
	StatusWaitingPayment = "waiting_payment"
	StatusPending        = "pending"
	StatusProcessing     = "processing"
	StatusShipping       = "shipping"
	StatusDelivered      = "delivered"
	StatusDone           = "done"
	StatusCompleted      = "completed"
	StatusCanceled       = "canceled"

	// Reached through payment provider callbacks.
	StatusPaid          = "dibayar"
	StatusAwaitingPay   = "menunggu pembayaran"
	StatusExpired       = "expired"
	StatusPaymentCancel = "dibatalkan"
	StatusPaymentFailed = "gagal"
)

const PaymentMethodCOD = "cod"

var knownStatuses = []string{
	StatusWaitingPayment, StatusPending, StatusProcessing, StatusShipping, StatusDelivered,
	StatusDone, StatusCompleted, StatusCanceled,
	StatusPaid, StatusAwaitingPay, StatusExpired, StatusPaymentCancel, StatusPaymentFailed,
}

var transactionStatusMapping = map[string]string{
	"settlement": StatusPaid,
	"pending":    StatusAwaitingPay,
	"expire":     StatusExpired,
	"cancel":     StatusPaymentCancel,
	"deny":       StatusPaymentFailed,
}

// TransitionTable lists, per status, the statuses an operator may move an order to.
type TransitionTable map[string]map[string]bool

// NewPermissiveTransitionTable allows every known status to move to every known status.
func NewPermissiveTransitionTable() TransitionTable {
	t := make(TransitionTable, len(knownStatuses))
	for _, from := range knownStatuses {
		t[from] = make(map[string]bool, len(knownStatuses))
		for _, to := range knownStatuses {
			t[from][to] = true
		}
	}
	return t
}

// Check returns ErrBadRequest for an unknown target and ErrNotAllowed for a
// disallowed move. A current status outside the table (for example a raw provider
// status stored verbatim) may move anywhere.
func (t TransitionTable) Check(from, to string) error {
	if !IsKnownStatus(to) {
		return fmt.Errorf("%w: unknown status %q", models.ErrBadRequest, to)
	}
	allowed, ok := t[from]
	if !ok {
		return nil
	}
	if !allowed[to] {
		return fmt.Errorf("%w: cannot move order from %q to %q", models.ErrNotAllowed, from, to)
	}
	return nil
}

func IsKnownStatus(status string) bool {
	for _, s := range knownStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func InitialStatus(paymentMethod string) string {
	if paymentMethod == PaymentMethodCOD {
		return StatusPending
	}
	return StatusWaitingPayment
}

// MapTransactionStatus translates a provider transaction status into an order status.
// Unknown values pass through unchanged.
func MapTransactionStatus(transactionStatus string) string {
	if s, ok := transactionStatusMapping[transactionStatus]; ok {
		return s
	}
	return transactionStatus
}
