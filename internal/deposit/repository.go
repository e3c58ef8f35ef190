package deposit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/customer"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/transaction"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type Repository interface {
	GetCustomerByAccountNumber(ctx context.Context, number string) (*customer.Customer, error)
	GetTransactionByIdempotencyKey(ctx context.Context, key uuid.UUID) (*transaction.Transaction, error)
	// CreateTransaction inserts the transaction with its items and fills
	// in the generated ID and timestamp.
	CreateTransaction(ctx context.Context, t *transaction.Transaction) error
	// IncrementCustomerTotals applies a posted deposit to the customer's
	// running counters.
	IncrementCustomerTotals(ctx context.Context, customerID int, amount, weight decimal.Decimal) error
	// UpsertMembership creates the (customer, unit) membership with the
	// deposit's totals if absent, otherwise increments it.
	UpsertMembership(ctx context.Context, customerID, unitID int, amount, weight decimal.Decimal) error
	GetTransactionsByCustomerID(ctx context.Context, customerID int) ([]*transaction.Transaction, error)
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

func (r *Repo) GetCustomerByAccountNumber(ctx context.Context, number string) (*customer.Customer, error) {
	const query = `
		SELECT id, account_number, name, password, status, balance,
			cumulative_weight, deposit_count, created_at, updated_at
		FROM customers WHERE account_number = $1;
	`

	c := new(customer.Customer)

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, number).Scan(
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

func (r *Repo) GetTransactionByIdempotencyKey(ctx context.Context, key uuid.UUID) (*transaction.Transaction, error) {
	const query = `
		SELECT id, transaction_no, customer_id, unit_id, operator_id,
			type, status, total_amount, total_weight, created_at
		FROM transactions WHERE idempotency_key = $1;
	`

	t := new(transaction.Transaction)

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, key).Scan(
		&t.ID,
		&t.Number,
		&t.CustomerID,
		&t.UnitID,
		&t.OperatorID,
		&t.Type,
		&t.Status,
		&t.TotalAmount,
		&t.TotalWeight,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	if err = r.scanItems(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (r *Repo) CreateTransaction(ctx context.Context, t *transaction.Transaction) error {
	const query = `
		INSERT INTO transactions
			(transaction_no, customer_id, unit_id, operator_id,
			type, status, total_amount, total_weight, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at;
	`

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query,
		t.Number,
		t.CustomerID,
		t.UnitID,
		t.OperatorID,
		t.Type,
		t.Status,
		t.TotalAmount,
		t.TotalWeight,
		t.IdempotencyKey,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "idempotency") {
				return &errs.AlreadyExistsError{FieldName: "idempotency_key"}
			}
			return errs.ErrDuplicateTransactionNo
		}
		return fmt.Errorf("create transaction: %w", err)
	}

	const itemQuery = `
		INSERT INTO transaction_items (transaction_id, waste_type_id, weight, price, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`

	for i := range t.Items {
		t.Items[i].TransactionID = t.ID
		err = r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, itemQuery,
			t.ID,
			t.Items[i].WasteTypeID,
			t.Items[i].Weight,
			t.Items[i].Price,
			t.Items[i].Amount,
		).Scan(&t.Items[i].ID)
		if err != nil {
			return fmt.Errorf("create transaction item: %w", err)
		}
	}

	return nil
}

func (r *Repo) IncrementCustomerTotals(ctx context.Context, customerID int, amount, weight decimal.Decimal) error {
	const query = `
		UPDATE customers SET
			balance = balance + $1,
			cumulative_weight = cumulative_weight + $2,
			deposit_count = deposit_count + 1,
			updated_at = now()
		WHERE id = $3;
	`

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).
		ExecContext(ctx, query, amount, weight, customerID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *Repo) UpsertMembership(ctx context.Context, customerID, unitID int, amount, weight decimal.Decimal) error {
	const query = `
		INSERT INTO unit_memberships (customer_id, unit_id, balance, cumulative_weight)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (customer_id, unit_id) DO UPDATE SET
			balance = unit_memberships.balance + EXCLUDED.balance,
			cumulative_weight = unit_memberships.cumulative_weight + EXCLUDED.cumulative_weight,
			updated_at = now();
	`

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).
		ExecContext(ctx, query, customerID, unitID, amount, weight)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repo) GetTransactionsByCustomerID(ctx context.Context, customerID int) ([]*transaction.Transaction, error) {
	const query = `
		SELECT id, transaction_no, customer_id, unit_id, operator_id,
			type, status, total_amount, total_weight, created_at
		FROM transactions
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC;
	`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}

	transactions := make([]*transaction.Transaction, 0)

	for rows.Next() {
		t := new(transaction.Transaction)
		err = rows.Scan(
			&t.ID,
			&t.Number,
			&t.CustomerID,
			&t.UnitID,
			&t.OperatorID,
			&t.Type,
			&t.Status,
			&t.TotalAmount,
			&t.TotalWeight,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		transactions = append(transactions, t)
	}

	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	// Rows.Err will report the last error encountered by Rows.Scan.
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(transactions) == 0 {
		return nil, errs.ErrNotFound
	}

	for _, t := range transactions {
		if t.Type != transaction.DEPOSIT {
			continue
		}
		if err = r.scanItems(ctx, t); err != nil {
			return nil, err
		}
	}

	return transactions, nil
}

func (r *Repo) scanItems(ctx context.Context, t *transaction.Transaction) error {
	const query = `
		SELECT id, transaction_id, waste_type_id, weight, price, amount
		FROM transaction_items
		WHERE transaction_id = $1
		ORDER BY id;
	`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query, t.ID)
	if err != nil {
		return err
	}

	for rows.Next() {
		var item transaction.Item
		err = rows.Scan(
			&item.ID,
			&item.TransactionID,
			&item.WasteTypeID,
			&item.Weight,
			&item.Price,
			&item.Amount,
		)
		if err != nil {
			return err
		}

		t.Items = append(t.Items, item)
	}

	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	return rows.Err()
}
