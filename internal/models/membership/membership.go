package membership

import (
	"time"

	"github.com/shopspring/decimal"
)

// Membership is the per-unit slice of a customer's ledger. The row is
// created lazily on the first deposit at a unit; callers must never
// assume it pre-exists.
type Membership struct {
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	Balance          decimal.Decimal `db:"balance" json:"balance"`
	CumulativeWeight decimal.Decimal `db:"cumulative_weight" json:"cumulative_weight"`
	ID               int             `db:"id" json:"id"`
	CustomerID       int             `db:"customer_id" json:"customer_id"`
	UnitID           int             `db:"unit_id" json:"unit_id"`
}
