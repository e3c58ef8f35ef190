package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/customer"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/operator"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository interface {
	GetCustomerByID(ctx context.Context, id int) (*customer.Customer, error)
	GetCustomerByAccountNumber(ctx context.Context, number string) (*customer.Customer, error)
	// CreateCustomer inserts a new active customer with zero balance and
	// fills in the generated ID.
	CreateCustomer(ctx context.Context, c *customer.Customer) error
	GetOperatorByID(ctx context.Context, id int) (*operator.Operator, error)
	GetOperatorByLogin(ctx context.Context, login string) (*operator.Operator, error)
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

const customerColumns = `id, account_number, name, password, status, balance,
	cumulative_weight, deposit_count, created_at, updated_at`

func (r *Repo) GetCustomerByID(ctx context.Context, id int) (*customer.Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers WHERE id = $1", customerColumns)

	return r.scanCustomer(r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *Repo) GetCustomerByAccountNumber(ctx context.Context, number string) (*customer.Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers WHERE account_number = $1", customerColumns)

	return r.scanCustomer(r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, number))
}

func (r *Repo) scanCustomer(row *sql.Row) (*customer.Customer, error) {
	c := new(customer.Customer)

	err := row.Scan(
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

func (r *Repo) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	const query = `
		INSERT INTO customers (account_number, name, password, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at;
	`

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query,
		c.AccountNumber,
		c.Name,
		c.Password,
		c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return &errs.AlreadyExistsError{FieldName: "account_number"}
		}
		return fmt.Errorf("create customer: %w", err)
	}

	return nil
}

func (r *Repo) GetOperatorByID(ctx context.Context, id int) (*operator.Operator, error) {
	const query = "SELECT id, login, password, unit_id, created_at FROM operators WHERE id = $1"

	return r.scanOperator(r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *Repo) GetOperatorByLogin(ctx context.Context, login string) (*operator.Operator, error) {
	const query = "SELECT id, login, password, unit_id, created_at FROM operators WHERE login = $1"

	return r.scanOperator(r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, login))
}

func (r *Repo) scanOperator(row *sql.Row) (*operator.Operator, error) {
	o := new(operator.Operator)

	err := row.Scan(
		&o.ID,
		&o.Login,
		&o.Password,
		&o.UnitID,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return o, nil
}
