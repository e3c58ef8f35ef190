package ranking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/adeas-rakit/banksampah-ledger/internal/config"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/customer"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// routineWindow is the trailing window of the deposit routine rank.
const routineWindow = 30 * 24 * time.Hour

// Profile is the customer's gamification view: three independent tiered
// ranks over lifetime weight, recent deposit routine and balance.
type Profile struct {
	Weight  Result `json:"weight"`
	Routine Result `json:"routine"`
	Balance Result `json:"balance"`
}

type Service struct {
	repo   Repository
	logger logger.Logger
	config *config.Config
	now    func() time.Time
}

func NewService(repo Repository, logger logger.Logger, config *config.Config) (*Service, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	return &Service{repo: repo, logger: logger, config: config, now: time.Now}, nil
}

var _ ServerInterface = (*Service)(nil)

// Get rank profile (GET /api/ranking).
func (s *Service) GetRanking(w http.ResponseWriter, r *http.Request) {
	c, found := customer.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	routineCount, err := s.repo.CountDepositsSince(r.Context(), c.ID, s.now().Add(-routineWindow))
	if err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	profile := &Profile{
		Weight:  CalculateRank(c.CumulativeWeight, WeightTable),
		Routine: CalculateRank(decimal.NewFromInt(int64(routineCount)), RoutineTable),
		Balance: CalculateRank(c.Balance, BalanceTable),
	}

	if err = json.NewEncoder(w).Encode(profile); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}
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
