package deposit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adeas-rakit/banksampah-ledger/internal/catalog"
	"github.com/adeas-rakit/banksampah-ledger/internal/config"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/customer"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/operator"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/transaction"
	"github.com/adeas-rakit/banksampah-ledger/pkg/genid"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/shopspring/decimal"
)

// Attempts at generating a non-colliding transaction number.
const maxNumberAttempts = 3

type Service struct {
	repo    Repository
	catalog catalog.Repository
	trm     *manager.Manager
	logger  logger.Logger
	config  *config.Config
}

func NewService(
	repo Repository,
	catalogRepo catalog.Repository,
	trm *manager.Manager,
	logger logger.Logger,
	config *config.Config,
) (*Service, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	if trm == nil {
		return nil, errors.New("nil dependency: transaction manager")
	}
	if catalogRepo == nil {
		return nil, errors.New("nil dependency: catalog repository")
	}
	return &Service{
		repo:    repo,
		catalog: catalogRepo,
		trm:     trm,
		logger:  logger,
		config:  config,
	}, nil
}

var _ ServerInterface = (*Service)(nil)

// Post new deposit (POST /api/deposits).
func (s *Service) PostDeposit(w http.ResponseWriter, r *http.Request, params PostDepositParams) {
	op, found := operator.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	posted, err := s.post(r.Context(), op, &params)
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err = json.NewEncoder(w).Encode(posted); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}
}

// Get transaction history of the authenticated customer
// (GET /api/transactions).
func (s *Service) GetTransactions(w http.ResponseWriter, r *http.Request) {
	c, found := customer.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	transactions, err := s.repo.GetTransactionsByCustomerID(r.Context(), c.ID)
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(transactions); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}
}

// post validates, prices and atomically records a deposit. It is the
// only code path that increases balances.
func (s *Service) post(ctx context.Context, op *operator.Operator, params *PostDepositParams) (*transaction.Transaction, error) {
	if len(params.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", errs.ErrInvalidInput)
	}
	for _, item := range params.Items {
		if !item.Weight.IsPositive() {
			return nil, fmt.Errorf("%w: weight of waste type %d must be positive",
				errs.ErrInvalidInput, item.WasteTypeID)
		}
	}

	// An already-posted deposit with the same idempotency key is
	// returned as is, never posted twice.
	if params.IdempotencyKey.Valid {
		existing, err := s.repo.GetTransactionByIdempotencyKey(ctx, params.IdempotencyKey.UUID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
	}

	c, err := s.repo.GetCustomerByAccountNumber(ctx, params.AccountNumber)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %q", err, params.AccountNumber)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if !c.Active() {
		return nil, fmt.Errorf("%w: %q", errs.ErrCustomerSuspended, c.AccountNumber)
	}

	// Price captured now defines the historical amount forever.
	items := make([]transaction.Item, 0, len(params.Items))
	totalAmount := decimal.Zero
	totalWeight := decimal.Zero

	for _, item := range params.Items {
		price, err := s.catalog.PriceOf(ctx, item.WasteTypeID, params.UnitID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return nil, fmt.Errorf("%w: waste type %d at unit %d",
					err, item.WasteTypeID, params.UnitID)
			}
			return nil, fmt.Errorf("price waste type %d: %w", item.WasteTypeID, err)
		}

		amount := item.Weight.Mul(price)
		items = append(items, transaction.Item{
			WasteTypeID: item.WasteTypeID,
			Weight:      item.Weight,
			Price:       price,
			Amount:      amount,
		})
		totalAmount = totalAmount.Add(amount)
		totalWeight = totalWeight.Add(item.Weight)
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		t := &transaction.Transaction{
			Number:         genid.TransactionNumber(time.Now()),
			CustomerID:     c.ID,
			UnitID:         params.UnitID,
			OperatorID:     op.ID,
			Type:           transaction.DEPOSIT,
			Status:         transaction.SUCCESS,
			TotalAmount:    totalAmount,
			TotalWeight:    totalWeight,
			Items:          items,
			IdempotencyKey: params.IdempotencyKey,
		}

		err = s.trm.Do(ctx, func(ctx context.Context) error {
			if err := s.repo.CreateTransaction(ctx, t); err != nil {
				return err
			}
			if err := s.repo.IncrementCustomerTotals(ctx, c.ID, totalAmount, totalWeight); err != nil {
				return err
			}
			return s.repo.UpsertMembership(ctx, c.ID, params.UnitID, totalAmount, totalWeight)
		})
		switch {
		case err == nil:
			return t, nil

		// Generated number collided, regenerate and retry.
		case errors.Is(err, errs.ErrDuplicateTransactionNo):
			s.logger.With(ctx, "transaction_no", t.Number).
				Infof("transaction number collision, retrying (%d)", attempt+1)
			continue

		// A concurrent request with the same idempotency key won;
		// return what it posted.
		case errors.Is(err, errs.ErrDataConflict) && params.IdempotencyKey.Valid:
			return s.repo.GetTransactionByIdempotencyKey(ctx, params.IdempotencyKey.UUID)

		default:
			return nil, err
		}
	}

	return nil, errs.ErrDuplicateTransactionNo
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status No Content (204).
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound

	// Status Bad Request (400).
	case errors.Is(err, errs.ErrInvalidInput) ||
		errors.Is(err, errs.ErrInvalidPayload) ||
		errors.Is(err, errs.ErrRequiredBodyParam) ||
		errors.Is(err, errs.ErrInvalidContentType):
		code = http.StatusBadRequest

	// Status Conflict (409).
	case errors.Is(err, errs.ErrDataConflict):
		code = http.StatusConflict

	// Status Unprocessable Entity (422).
	case errors.Is(err, errs.ErrCustomerSuspended):
		code = http.StatusUnprocessableEntity
	}

	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
