package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// WasteType is a priced catalog entry scoped to a single unit.
// Prices here are reference data only; posted deposits carry their own
// captured price.
type WasteType struct {
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	ID        int             `db:"id" json:"id"`
	UnitID    int             `db:"unit_id" json:"unit_id"`
	Active    bool            `db:"active" json:"active"`
}
