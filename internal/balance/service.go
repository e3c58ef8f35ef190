package balance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adeas-rakit/banksampah-ledger/internal/config"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/customer"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// Summary is the customer-facing overall balance view. Balance, weight
// and deposit count come from the writer-maintained counters; the
// withdrawn total is derived from the append-only history.
type Summary struct {
	Balance          decimal.Decimal `json:"balance"`
	CumulativeWeight decimal.Decimal `json:"cumulative_weight"`
	Withdrawn        decimal.Decimal `json:"withdrawn"`
	DepositCount     int             `json:"deposit_count"`
}

// UnitBalance is one unit's slice of the customer's balance.
type UnitBalance struct {
	Balance          decimal.Decimal `json:"balance"`
	CumulativeWeight decimal.Decimal `json:"cumulative_weight"`
	UnitID           int             `json:"unit_id"`
}

// Drift is a reconciliation finding: a counter that disagrees with the
// balance recomputed from transaction history.
type Drift struct {
	Scope      string          `json:"scope"`
	Counter    decimal.Decimal `json:"counter"`
	Recomputed decimal.Decimal `json:"recomputed"`
	UnitID     int             `json:"unit_id,omitempty"`
}

type Service struct {
	repo   Repository
	logger logger.Logger
	config *config.Config
}

func NewService(repo Repository, logger logger.Logger, config *config.Config) (*Service, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	return &Service{repo: repo, logger: logger, config: config}, nil
}

var _ ServerInterface = (*Service)(nil)

// Get overall balance (GET /api/balance).
func (s *Service) GetBalance(w http.ResponseWriter, r *http.Request) {
	c, found := customer.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	summary, err := s.overall(r.Context(), c)
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(summary); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}
}

// Get per-unit balances (GET /api/balance/units).
func (s *Service) GetUnitBalances(w http.ResponseWriter, r *http.Request) {
	c, found := customer.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	balances, err := s.perUnit(r.Context(), c.ID)
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(balances); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}
}

// Reconcile counters against transaction history
// (GET /api/balance/reconcile).
func (s *Service) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	c, found := customer.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	drifts, err := s.Reconcile(r.Context(), c.ID)
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.NewEncoder(w).Encode(drifts); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}
}

func (s *Service) overall(ctx context.Context, c *customer.Customer) (*Summary, error) {
	totals, err := s.repo.SumTransactions(ctx, c.ID, nil)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Balance:          c.Balance,
		CumulativeWeight: c.CumulativeWeight,
		DepositCount:     c.DepositCount,
		Withdrawn:        totals.Withdrawn,
	}, nil
}

// perUnit unions units holding a membership row with units that appear
// only in the transaction history (e.g. migrated data); balances for the
// latter are recomputed from history.
func (s *Service) perUnit(ctx context.Context, customerID int) ([]*UnitBalance, error) {
	memberships, err := s.repo.GetMembershipsByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	balances := make([]*UnitBalance, 0, len(memberships))
	seen := make(map[int]struct{}, len(memberships))

	for _, m := range memberships {
		seen[m.UnitID] = struct{}{}
		balances = append(balances, &UnitBalance{
			UnitID:           m.UnitID,
			Balance:          m.Balance,
			CumulativeWeight: m.CumulativeWeight,
		})
	}

	unitIDs, err := s.repo.GetTransactedUnitIDs(ctx, customerID)
	if err != nil {
		return nil, err
	}

	for _, unitID := range unitIDs {
		if _, ok := seen[unitID]; ok {
			continue
		}

		unitID := unitID
		totals, err := s.repo.SumTransactions(ctx, customerID, &unitID)
		if err != nil {
			return nil, err
		}

		balances = append(balances, &UnitBalance{
			UnitID:           unitID,
			Balance:          totals.Balance(),
			CumulativeWeight: totals.DepositWeight,
		})
	}

	return balances, nil
}

// Reconcile recomputes every balance scope of the customer from the
// transaction history and reports counters that drifted. The counters
// stay authoritative; this is a detection tool, not a repair.
func (s *Service) Reconcile(ctx context.Context, customerID int) ([]*Drift, error) {
	c, err := s.repo.GetCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	drifts := make([]*Drift, 0)

	totals, err := s.repo.SumTransactions(ctx, customerID, nil)
	if err != nil {
		return nil, err
	}
	if !c.Balance.Equal(totals.Balance()) {
		drifts = append(drifts, &Drift{
			Scope:      "customer",
			Counter:    c.Balance,
			Recomputed: totals.Balance(),
		})
	}

	memberships, err := s.repo.GetMembershipsByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	for _, m := range memberships {
		unitID := m.UnitID
		unitTotals, err := s.repo.SumTransactions(ctx, customerID, &unitID)
		if err != nil {
			return nil, err
		}
		if !m.Balance.Equal(unitTotals.Balance()) {
			drifts = append(drifts, &Drift{
				Scope:      "unit",
				UnitID:     m.UnitID,
				Counter:    m.Balance,
				Recomputed: unitTotals.Balance(),
			})
		}
	}

	return drifts, nil
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	if errors.Is(err, errs.ErrNotFound) {
		code = http.StatusNotFound
	}

	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
