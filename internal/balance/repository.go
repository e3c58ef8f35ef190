package balance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/customer"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/membership"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/shopspring/decimal"
)

// HistoryTotals is a recomputation of a balance scope from the
// append-only transaction history.
type HistoryTotals struct {
	Deposited     decimal.Decimal
	Withdrawn     decimal.Decimal
	DepositWeight decimal.Decimal
}

// Balance derives the scope's balance from the history sums.
func (h *HistoryTotals) Balance() decimal.Decimal {
	return h.Deposited.Sub(h.Withdrawn)
}

type Repository interface {
	GetCustomerByID(ctx context.Context, id int) (*customer.Customer, error)
	GetMembershipsByCustomerID(ctx context.Context, customerID int) ([]*membership.Membership, error)
	// GetTransactedUnitIDs lists every unit appearing in the customer's
	// transaction history, including units without a membership row.
	GetTransactedUnitIDs(ctx context.Context, customerID int) ([]int, error)
	// SumTransactions recomputes totals from SUCCESS transactions for
	// the customer, optionally scoped to one unit.
	SumTransactions(ctx context.Context, customerID int, unitID *int) (*HistoryTotals, error)
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

func (r *Repo) GetMembershipsByCustomerID(ctx context.Context, customerID int) ([]*membership.Membership, error) {
	const query = `
		SELECT id, customer_id, unit_id, balance, cumulative_weight, created_at, updated_at
		FROM unit_memberships
		WHERE customer_id = $1
		ORDER BY unit_id;
	`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}

	memberships := make([]*membership.Membership, 0)

	for rows.Next() {
		m := new(membership.Membership)
		err = rows.Scan(
			&m.ID,
			&m.CustomerID,
			&m.UnitID,
			&m.Balance,
			&m.CumulativeWeight,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		memberships = append(memberships, m)
	}

	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	return memberships, rows.Err()
}

func (r *Repo) GetTransactedUnitIDs(ctx context.Context, customerID int) ([]int, error) {
	const query = `
		SELECT DISTINCT unit_id FROM transactions
		WHERE customer_id = $1
		ORDER BY unit_id;
	`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}

	unitIDs := make([]int, 0)

	for rows.Next() {
		var id int
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		unitIDs = append(unitIDs, id)
	}

	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	return unitIDs, rows.Err()
}

func (r *Repo) SumTransactions(ctx context.Context, customerID int, unitID *int) (*HistoryTotals, error) {
	const query = `
		SELECT
			COALESCE(SUM(total_amount) FILTER (WHERE type = 'DEPOSIT' AND status = 'SUCCESS'), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE type = 'WITHDRAWAL' AND status = 'SUCCESS'), 0),
			COALESCE(SUM(total_weight) FILTER (WHERE type = 'DEPOSIT' AND status = 'SUCCESS'), 0)
		FROM transactions
		WHERE customer_id = $1 AND ($2::integer IS NULL OR unit_id = $2);
	`

	totals := new(HistoryTotals)

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, customerID, unitID).Scan(
		&totals.Deposited,
		&totals.Withdrawn,
		&totals.DepositWeight,
	)
	if err != nil {
		return nil, err
	}

	return totals, nil
}
