package deposit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/transaction"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to init sqlmock")
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db, trmsql.DefaultCtxGetter, logger.NewNop())
	require.NoError(t, err, "failed to init repository")

	return repo, mock
}

func TestRepoCreateTransaction(t *testing.T) {
	repo, mock := newTestRepo(t)

	now := time.Now()

	mock.ExpectQuery("INSERT INTO transactions").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, now))
	mock.ExpectQuery("INSERT INTO transaction_items").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	tr := &transaction.Transaction{
		Number:      "TRX-20240615-a1b2c3d4",
		CustomerID:  1,
		UnitID:      3,
		OperatorID:  7,
		Type:        transaction.DEPOSIT,
		Status:      transaction.SUCCESS,
		TotalAmount: decimal.NewFromInt(7500),
		TotalWeight: decimal.NewFromInt(5),
		Items: []transaction.Item{
			{
				WasteTypeID: 10,
				Weight:      decimal.NewFromInt(5),
				Price:       decimal.NewFromInt(1500),
				Amount:      decimal.NewFromInt(7500),
			},
		},
	}

	require.NoError(t, repo.CreateTransaction(context.Background(), tr))

	assert.Equal(t, 42, tr.ID, "generated transaction id must be filled in")
	assert.Equal(t, 7, tr.Items[0].ID, "generated item id must be filled in")
	assert.Equal(t, 42, tr.Items[0].TransactionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreateTransaction_IdempotencyConflict(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("INSERT INTO transactions").
		WillReturnError(&pgconn.PgError{
			Code:           pgerrcode.UniqueViolation,
			ConstraintName: "transactions_idempotency_key_key",
		})

	err := repo.CreateTransaction(context.Background(), &transaction.Transaction{})

	assert.ErrorIs(t, err, errs.ErrDataConflict,
		"a duplicate idempotency key must surface as a data conflict")

	var alreadyExists *errs.AlreadyExistsError
	require.ErrorAs(t, err, &alreadyExists)
	assert.Equal(t, "idempotency_key", alreadyExists.FieldName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreateTransaction_NumberConflict(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("INSERT INTO transactions").
		WillReturnError(&pgconn.PgError{
			Code:           pgerrcode.UniqueViolation,
			ConstraintName: "transactions_transaction_no_key",
		})

	err := repo.CreateTransaction(context.Background(), &transaction.Transaction{})

	assert.ErrorIs(t, err, errs.ErrDuplicateTransactionNo,
		"a colliding number must be retryable by the caller")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoIncrementCustomerTotals(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectExec("UPDATE customers").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.IncrementCustomerTotals(context.Background(), 1,
			decimal.NewFromInt(7500), decimal.NewFromInt(5))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no such customer", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectExec("UPDATE customers").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.IncrementCustomerTotals(context.Background(), 404,
			decimal.NewFromInt(7500), decimal.NewFromInt(5))

		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepoUpsertMembership(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("INSERT INTO unit_memberships").
		WithArgs(1, 3, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertMembership(context.Background(), 1, 3,
		decimal.NewFromInt(7500), decimal.NewFromInt(5))

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoGetCustomerByAccountNumber(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		now := time.Now()
		columns := []string{
			"id", "account_number", "name", "password", "status",
			"balance", "cumulative_weight", "deposit_count",
			"created_at", "updated_at",
		}

		mock.ExpectQuery("SELECT (.+) FROM customers").
			WithArgs("BSN0000000001").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(1, "BSN0000000001", "Budi", "hash", "ACTIVE",
					"15000", "12.5", 4, now, now))

		c, err := repo.GetCustomerByAccountNumber(context.Background(), "BSN0000000001")

		require.NoError(t, err)
		assert.Equal(t, 1, c.ID)
		assert.True(t, c.Balance.Equal(decimal.NewFromInt(15000)))
		assert.True(t, c.CumulativeWeight.Equal(decimal.RequireFromString("12.5")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newTestRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM customers").
			WithArgs("BSN9999999999").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetCustomerByAccountNumber(context.Background(), "BSN9999999999")

		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepoCreateTransaction_WrapsUnknownErrors(t *testing.T) {
	repo, mock := newTestRepo(t)

	boom := errors.New("connection reset")

	mock.ExpectQuery("INSERT INTO transactions").WillReturnError(boom)

	err := repo.CreateTransaction(context.Background(), &transaction.Transaction{})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
