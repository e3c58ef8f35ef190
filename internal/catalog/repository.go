package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/catalog"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// PriceOf resolves the current price of an active waste type at the
	// given unit. The caller captures the returned price at posting time.
	PriceOf(ctx context.Context, wasteTypeID, unitID int) (decimal.Decimal, error)
	GetWasteTypesByUnitID(ctx context.Context, unitID int) ([]*catalog.WasteType, error)
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

func (r *Repo) PriceOf(ctx context.Context, wasteTypeID, unitID int) (decimal.Decimal, error) {
	const query = `
		SELECT price FROM waste_types
		WHERE id = $1 AND unit_id = $2 AND active;
	`

	var price decimal.Decimal

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query, wasteTypeID, unitID).
		Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, errs.ErrNotFound
		}
		return decimal.Zero, err
	}

	return price, nil
}

func (r *Repo) GetWasteTypesByUnitID(ctx context.Context, unitID int) ([]*catalog.WasteType, error) {
	const query = `
		SELECT id, unit_id, name, price, active, created_at FROM waste_types
		WHERE unit_id = $1 AND active
		ORDER BY name;
	`

	rows, err := r.db.QueryContext(ctx, query, unitID)
	if err != nil {
		return nil, err
	}

	wasteTypes := make([]*catalog.WasteType, 0)

	for rows.Next() {
		wt := new(catalog.WasteType)
		err = rows.Scan(
			&wt.ID,
			&wt.UnitID,
			&wt.Name,
			&wt.Price,
			&wt.Active,
			&wt.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		wasteTypes = append(wasteTypes, wt)
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

	if len(wasteTypes) == 0 {
		return nil, errs.ErrNotFound
	}

	return wasteTypes, nil
}
