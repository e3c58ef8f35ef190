package customer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	ACTIVE    Status = "ACTIVE"
	SUSPENDED Status = "SUSPENDED"
)

// Customer is a waste bank member (nasabah). Balance, CumulativeWeight and
// DepositCount are running totals maintained exclusively by the deposit and
// withdrawal writers. Fields aligned for the GC optimal scanning.
type Customer struct {
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	AccountNumber    string          `db:"account_number" json:"account_number"`
	Name             string          `db:"name" json:"name"`
	Password         string          `db:"password" json:"-"`
	Status           Status          `db:"status" json:"status"`
	Balance          decimal.Decimal `db:"balance" json:"balance"`
	CumulativeWeight decimal.Decimal `db:"cumulative_weight" json:"cumulative_weight"`
	DepositCount     int             `db:"deposit_count" json:"deposit_count"`
	ID               int             `db:"id" json:"id"`
}

// Active reports whether the customer may take part in ledger operations.
func (c *Customer) Active() bool {
	return c.Status == ACTIVE
}

// key is an unexported type for keys defined in this package.
// This prevents collisions with keys defined in other packages.
type key int

// customerKey is the key for customer.Customer values in Contexts. It is
// unexported; clients use customer.NewContext and customer.FromContext
// instead of using this key directly.
var customerKey key

// NewContext returns a new Context that carries value c.
func NewContext(ctx context.Context, c *Customer) context.Context {
	return context.WithValue(ctx, customerKey, c)
}

// FromContext returns the Customer value stored in ctx, if any.
func FromContext(ctx context.Context) (*Customer, bool) {
	c, ok := ctx.Value(customerKey).(*Customer)
	return c, ok
}
