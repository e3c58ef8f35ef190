package withdrawal

import (
	"fmt"
	"strings"
	"time"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/shopspring/decimal"
)

type Status string

const (
	PENDING  Status = "PENDING"
	APPROVED Status = "APPROVED"
	REJECTED Status = "REJECTED"
)

// MinRejectionReasonLen is the minimum accepted length
// of a trimmed rejection reason.
const MinRejectionReasonLen = 5

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == APPROVED || s == REJECTED
}

// Request is a customer's withdrawal request. Status only ever moves
// PENDING -> APPROVED or PENDING -> REJECTED; terminal states are final.
type Request struct {
	UpdatedAt       time.Time       `json:"updated_at"`
	CreatedAt       time.Time       `json:"created_at"`
	Status          Status          `json:"status"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	TransactionID   *int            `json:"transaction_id,omitempty"`
	ProcessedBy     *int            `json:"processed_by,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	ID              int             `json:"id"`
	CustomerID      int             `json:"customer_id"`
	UnitID          int             `json:"unit_id"`
}

// NewRequest builds a PENDING request after validating the amount.
func NewRequest(customerID, unitID int, amount decimal.Decimal) (*Request, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", errs.ErrInvalidInput)
	}
	return &Request{
		CustomerID: customerID,
		UnitID:     unitID,
		Amount:     amount,
		Status:     PENDING,
	}, nil
}

// Approve transitions the request to APPROVED, linking the settling
// transaction and the processing operator. Illegal transitions are
// rejected by construction.
func (r *Request) Approve(transactionID, processedBy int) error {
	if r.Status.Terminal() {
		return fmt.Errorf("%w: request %d is %s", errs.ErrAlreadyProcessed, r.ID, r.Status)
	}
	r.Status = APPROVED
	r.TransactionID = &transactionID
	r.ProcessedBy = &processedBy
	return nil
}

// Reject transitions the request to REJECTED with a mandatory reason.
// No balance is touched on this path.
func (r *Request) Reject(processedBy int, reason string) error {
	if err := ValidateReason(reason); err != nil {
		return err
	}
	if r.Status.Terminal() {
		return fmt.Errorf("%w: request %d is %s", errs.ErrAlreadyProcessed, r.ID, r.Status)
	}
	r.Status = REJECTED
	r.RejectionReason = &reason
	r.ProcessedBy = &processedBy
	return nil
}

// ValidateReason enforces the minimum rejection reason length.
func ValidateReason(reason string) error {
	if len(strings.TrimSpace(reason)) < MinRejectionReasonLen {
		return fmt.Errorf("%w: rejection reason must be at least %d characters",
			errs.ErrInvalidInput, MinRejectionReasonLen)
	}
	return nil
}
