package ranking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/customer"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
)

type Repository interface {
	GetCustomerByID(ctx context.Context, id int) (*customer.Customer, error)
	// CountDepositsSince counts SUCCESS deposits posted after the given
	// instant, the input of the routine rank.
	CountDepositsSince(ctx context.Context, customerID int, since time.Time) (int, error)
}

type Repo struct {
	db     *sql.DB
	getter *trmsql.CtxGetter
	logger logger.Logger
}

func NewRepository(db *sql.DB, getter *trmsql.CtxGetter, logger logger.Logger) (*Repo, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}
	if getter == nil {
		return nil, errors.New("nil dependency: transaction getter")
	}

	return &Repo{db: db, getter: getter, logger: logger}, nil
}

var _ Repository = (*Repo)(nil)

func (r *Repo) GetCustomerByID(ctx context.Context, id int) (*customer.Customer, error) {
	const query = `
		SELECT id, account_number, name, password, status, balance,
			cumulative_weight, deposit_count, created_at, updated_at
		FROM customers WHERE id = $1;
	`

	c := new(customer.Customer)

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.AccountNumber,
		&c.Name,
		&c.Password,
		&c.Status,
		&c.Balance,
		&c.CumulativeWeight,
		&c.DepositCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return c, nil
}

func (r *Repo) CountDepositsSince(ctx context.Context, customerID int, since time.Time) (int, error) {
	const query = `
		SELECT COUNT(*) FROM transactions
		WHERE customer_id = $1
			AND type = 'DEPOSIT'
			AND status = 'SUCCESS'
			AND created_at >= $2;
	`

	var count int

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query, customerID, since).
		Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
