package withdraw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adeas-rakit/banksampah-ledger/internal/config"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/customer"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/operator"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/transaction"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/withdrawal"
	"github.com/adeas-rakit/banksampah-ledger/pkg/genid"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/shopspring/decimal"
)

// Attempts at generating a non-colliding transaction number.
const maxNumberAttempts = 3

type Service struct {
	repo   Repository
	trm    *manager.Manager
	logger logger.Logger
	config *config.Config
}

func NewService(repo Repository, trm *manager.Manager, logger logger.Logger, config *config.Config) (*Service, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	if trm == nil {
		return nil, errors.New("nil dependency: transaction manager")
	}
	return &Service{repo: repo, trm: trm, logger: logger, config: config}, nil
}

var _ ServerInterface = (*Service)(nil)

// Create withdrawal request (POST /api/withdrawals).
func (s *Service) RequestWithdrawal(w http.ResponseWriter, r *http.Request, params RequestWithdrawalParams) {
	c, found := customer.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	req, err := s.request(r.Context(), c.ID, params.UnitID, params.Amount)
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err = json.NewEncoder(w).Encode(req); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}
}

// Decide withdrawal request (POST /api/withdrawals/{requestID}/decision).
func (s *Service) DecideWithdrawal(w http.ResponseWriter, r *http.Request, params DecideWithdrawalParams) {
	op, found := operator.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	req, err := s.decide(r.Context(), op, &params)
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(req); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}
}

// Get all withdrawal requests of the authenticated customer
// (GET /api/withdrawals).
func (s *Service) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	c, found := customer.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	requests, err := s.repo.GetRequestsByCustomerID(r.Context(), c.ID)
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(requests); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}
}

// request files a PENDING withdrawal request. A customer may not request
// more than their balance at the specific unit, regardless of what they
// hold elsewhere.
func (s *Service) request(ctx context.Context, customerID, unitID int, amount decimal.Decimal) (*withdrawal.Request, error) {
	req, err := withdrawal.NewRequest(customerID, unitID, amount)
	if err != nil {
		return nil, err
	}

	m, err := s.repo.GetMembership(ctx, customerID, unitID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%w: no balance at unit %d", errs.ErrNotEnoughFunds, unitID)
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}

	if m.Balance.LessThan(amount) {
		return nil, fmt.Errorf("%w: unit balance %s is below %s",
			errs.ErrNotEnoughFunds, m.Balance, amount)
	}

	if err = s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// decide settles a PENDING request. The claim, both balance decrements,
// the settlement transaction and its link are one atomic unit; a
// concurrent decision on the same request loses the claim and reports
// "already processed". Insufficient balance rolls everything back and
// durably leaves the request PENDING.
func (s *Service) decide(ctx context.Context, op *operator.Operator, params *DecideWithdrawalParams) (*withdrawal.Request, error) {
	req, err := s.repo.GetRequestByID(ctx, params.RequestID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%w: withdrawal request %d", err, params.RequestID)
		}
		return nil, fmt.Errorf("get withdrawal request: %w", err)
	}

	switch params.Action {
	case ActionReject:
		err = s.reject(ctx, req, op.ID, params.Reason)
	case ActionApprove:
		err = s.approve(ctx, req, op.ID)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", errs.ErrInvalidInput, params.Action)
	}
	if err != nil {
		return nil, err
	}

	return s.repo.GetRequestByID(ctx, req.ID)
}

func (s *Service) reject(ctx context.Context, req *withdrawal.Request, processedBy int, reason string) error {
	if err := withdrawal.ValidateReason(reason); err != nil {
		return err
	}

	return s.trm.Do(ctx, func(ctx context.Context) error {
		return s.repo.ClaimRequest(ctx, req.ID, withdrawal.REJECTED, processedBy, &reason)
	})
}

func (s *Service) approve(ctx context.Context, req *withdrawal.Request, processedBy int) error {
	var err error

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		t := &transaction.Transaction{
			Number:      genid.TransactionNumber(time.Now()),
			CustomerID:  req.CustomerID,
			UnitID:      req.UnitID,
			OperatorID:  processedBy,
			Type:        transaction.WITHDRAWAL,
			Status:      transaction.SUCCESS,
			TotalAmount: req.Amount,
			TotalWeight: decimal.Zero,
		}

		err = s.trm.Do(ctx, func(ctx context.Context) error {
			// Claim first: only one decision can move the request
			// out of PENDING.
			if err := s.repo.ClaimRequest(ctx, req.ID, withdrawal.APPROVED, processedBy, nil); err != nil {
				return err
			}

			// Balances may have changed since the request was filed;
			// both decrements re-validate sufficiency in one statement.
			if err := s.repo.DecrementCustomerBalance(ctx, req.CustomerID, req.Amount); err != nil {
				return err
			}
			if err := s.repo.DecrementMembershipBalance(ctx, req.CustomerID, req.UnitID, req.Amount); err != nil {
				return err
			}

			if err := s.repo.CreateTransaction(ctx, t); err != nil {
				return err
			}

			return s.repo.LinkTransaction(ctx, req.ID, t.ID)
		})

		// Generated number collided, regenerate and retry.
		if errors.Is(err, errs.ErrDuplicateTransactionNo) {
			s.logger.With(ctx, "transaction_no", t.Number).
				Infof("transaction number collision, retrying (%d)", attempt+1)
			continue
		}

		return err
	}

	return err
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status Not Found (404).
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound

	// Status Bad Request (400).
	case errors.Is(err, errs.ErrInvalidInput) ||
		errors.Is(err, errs.ErrInvalidPayload) ||
		errors.Is(err, errs.ErrRequiredBodyParam):
		code = http.StatusBadRequest

	// Status Payment Required (402).
	case errors.Is(err, errs.ErrNotEnoughFunds):
		code = http.StatusPaymentRequired

	// Status Conflict (409).
	case errors.Is(err, errs.ErrAlreadyProcessed):
		code = http.StatusConflict
	}

	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
