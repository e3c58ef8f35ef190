package withdraw

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/membership"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/transaction"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/withdrawal"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type Repository interface {
	GetMembership(ctx context.Context, customerID, unitID int) (*membership.Membership, error)
	CreateRequest(ctx context.Context, req *withdrawal.Request) error
	GetRequestByID(ctx context.Context, id int) (*withdrawal.Request, error)
	GetRequestsByCustomerID(ctx context.Context, customerID int) ([]*withdrawal.Request, error)
	// ClaimRequest moves the request out of PENDING. Exactly one caller
	// can win the claim; everyone else gets ErrAlreadyProcessed.
	ClaimRequest(ctx context.Context, id int, status withdrawal.Status, processedBy int, reason *string) error
	LinkTransaction(ctx context.Context, requestID, transactionID int) error
	// DecrementCustomerBalance applies the decrement only if the balance
	// covers it, in a single statement.
	DecrementCustomerBalance(ctx context.Context, customerID int, amount decimal.Decimal) error
	DecrementMembershipBalance(ctx context.Context, customerID, unitID int, amount decimal.Decimal) error
	CreateTransaction(ctx context.Context, t *transaction.Transaction) error
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

func (r *Repo) GetMembership(ctx context.Context, customerID, unitID int) (*membership.Membership, error) {
	const query = `
		SELECT id, customer_id, unit_id, balance, cumulative_weight, created_at, updated_at
		FROM unit_memberships
		WHERE customer_id = $1 AND unit_id = $2;
	`

	m := new(membership.Membership)

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, customerID, unitID).Scan(
		&m.ID,
		&m.CustomerID,
		&m.UnitID,
		&m.Balance,
		&m.CumulativeWeight,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return m, nil
}

func (r *Repo) CreateRequest(ctx context.Context, req *withdrawal.Request) error {
	const query = `
		INSERT INTO withdrawal_requests (customer_id, unit_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at;
	`

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query,
		req.CustomerID,
		req.UnitID,
		req.Amount,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create withdrawal request: %w", err)
	}

	return nil
}

func (r *Repo) GetRequestByID(ctx context.Context, id int) (*withdrawal.Request, error) {
	const query = `
		SELECT id, customer_id, unit_id, amount, status, transaction_id,
			processed_by, rejection_reason, created_at, updated_at
		FROM withdrawal_requests
		WHERE id = $1;
	`

	req := new(withdrawal.Request)

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.CustomerID,
		&req.UnitID,
		&req.Amount,
		&req.Status,
		&req.TransactionID,
		&req.ProcessedBy,
		&req.RejectionReason,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return req, nil
}

func (r *Repo) GetRequestsByCustomerID(ctx context.Context, customerID int) ([]*withdrawal.Request, error) {
	const query = `
		SELECT id, customer_id, unit_id, amount, status, transaction_id,
			processed_by, rejection_reason, created_at, updated_at
		FROM withdrawal_requests
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC;
	`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}

	requests := make([]*withdrawal.Request, 0)

	for rows.Next() {
		req := new(withdrawal.Request)
		err = rows.Scan(
			&req.ID,
			&req.CustomerID,
			&req.UnitID,
			&req.Amount,
			&req.Status,
			&req.TransactionID,
			&req.ProcessedBy,
			&req.RejectionReason,
			&req.CreatedAt,
			&req.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		requests = append(requests, req)
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

	if len(requests) == 0 {
		return nil, errs.ErrNotFound
	}

	return requests, nil
}

func (r *Repo) ClaimRequest(ctx context.Context, id int, status withdrawal.Status, processedBy int, reason *string) error {
	const query = `
		UPDATE withdrawal_requests SET
			status = $2,
			processed_by = $3,
			rejection_reason = $4,
			updated_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING id;
	`

	var claimed int

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query, id, status, processedBy, reason).
		Scan(&claimed)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("claim withdrawal request: %w", err)
	}

	// No row was claimed: either the request never existed or a
	// concurrent decision already moved it out of PENDING.
	const existsQuery = "SELECT status FROM withdrawal_requests WHERE id = $1"

	var current withdrawal.Status

	err = r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, existsQuery, id).
		Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}

	return fmt.Errorf("%w: request %d is %s", errs.ErrAlreadyProcessed, id, current)
}

func (r *Repo) LinkTransaction(ctx context.Context, requestID, transactionID int) error {
	const query = `
		UPDATE withdrawal_requests SET
			transaction_id = $2,
			updated_at = now()
		WHERE id = $1;
	`

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, requestID, transactionID)
	if err != nil {
		return fmt.Errorf("link settlement transaction: %w", err)
	}

	return nil
}

func (r *Repo) DecrementCustomerBalance(ctx context.Context, customerID int, amount decimal.Decimal) error {
	const query = `
		UPDATE customers SET
			balance = balance - $1,
			updated_at = now()
		WHERE id = $2 AND balance >= $1;
	`

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, amount, customerID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: customer balance below %s", errs.ErrNotEnoughFunds, amount)
	}

	return nil
}

func (r *Repo) DecrementMembershipBalance(ctx context.Context, customerID, unitID int, amount decimal.Decimal) error {
	const query = `
		UPDATE unit_memberships SET
			balance = balance - $1,
			updated_at = now()
		WHERE customer_id = $2 AND unit_id = $3 AND balance >= $1;
	`

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, amount, customerID, unitID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: unit balance below %s", errs.ErrNotEnoughFunds, amount)
	}

	return nil
}

func (r *Repo) CreateTransaction(ctx context.Context, t *transaction.Transaction) error {
	const query = `
		INSERT INTO transactions
			(transaction_no, customer_id, unit_id, operator_id,
			type, status, total_amount, total_weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
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
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return errs.ErrDuplicateTransactionNo
		}
		return fmt.Errorf("create settlement transaction: %w", err)
	}

	return nil
}
