package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	DEPOSIT    Type = "DEPOSIT"
	WITHDRAWAL Type = "WITHDRAWAL"
)

type Status string

const (
	PENDING Status = "PENDING"
	SUCCESS Status = "SUCCESS"
	FAILED  Status = "FAILED"
)

// Transaction is an immutable ledger record. Once inserted it is never
// updated; corrections are modelled as new transactions.
type Transaction struct {
	CreatedAt      time.Time       `json:"created_at"`
	Number         string          `json:"transaction_no"`
	Type           Type            `json:"type"`
	Status         Status          `json:"status"`
	Items          []Item          `json:"items,omitempty"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalWeight    decimal.Decimal `json:"total_weight"`
	IdempotencyKey uuid.NullUUID   `json:"-"`
	ID             int             `json:"id"`
	CustomerID     int             `json:"customer_id"`
	UnitID         int             `json:"unit_id"`
	OperatorID     int             `json:"operator_id,omitempty"`
}

// Item is a deposit line. Price is captured at posting time so later
// catalog price changes never alter historical totals.
type Item struct {
	Weight        decimal.Decimal `json:"weight"`
	Price         decimal.Decimal `json:"price"`
	Amount        decimal.Decimal `json:"amount"`
	ID            int             `json:"id"`
	TransactionID int             `json:"-"`
	WasteTypeID   int             `json:"waste_type_id"`
}
