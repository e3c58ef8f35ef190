package operator

import (
	"context"
	"time"
)

// Operator is a collection point employee who records deposits and
// decides withdrawal requests on behalf of their unit.
type Operator struct {
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Login     string    `db:"login" json:"login"`
	Password  string    `db:"password" json:"-"`
	ID        int       `db:"id" json:"id"`
	UnitID    int       `db:"unit_id" json:"unit_id"`
}

// key is an unexported type for keys defined in this package.
// This prevents collisions with keys defined in other packages.
type key int

var operatorKey key

// NewContext returns a new Context that carries value o.
func NewContext(ctx context.Context, o *Operator) context.Context {
	return context.WithValue(ctx, operatorKey, o)
}

// FromContext returns the Operator value stored in ctx, if any.
func FromContext(ctx context.Context) (*Operator, bool) {
	o, ok := ctx.Value(operatorKey).(*Operator)
	return o, ok
}
