package order

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ecomstore/backend/internal/domain/shared"
)

// Status is the fulfilment state of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// fulfilment order of the non-cancelled states
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

// AllStatuses returns every order status
func AllStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
}

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	return slices.Contains(AllStatuses(), s)
}

func invalidStatusError(raw Status) error {
	names := make([]string, 0, 6)
	for _, s := range AllStatuses() {
		names = append(names, string(s))
	}
	return shared.NewDomainError("INVALID_STATUS",
		fmt.Sprintf("Invalid order status: %s. Expected one of: %s", raw, strings.Join(names, ", ")))
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsCancellable reports whether the customer may still cancel
func (s Status) IsCancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo reports whether target is reachable from s.
// Fulfilment only moves forward, steps may be skipped, and repeating the
// current non-terminal status is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	if !target.IsValid() || s.IsTerminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return statusRank[target] >= statusRank[s]
}

// ParseStatus converts a raw value into a Status
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", invalidStatusError(s)
	}
	return s, nil
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPayPal, PaymentCashOnDelivery:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus tracks settlement of an order
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsValid checks if the status is a known PaymentStatus
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (p PaymentStatus) String() string {
	return string(p)
}
