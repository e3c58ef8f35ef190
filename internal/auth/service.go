package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adeas-rakit/banksampah-ledger/internal/config"
	"github.com/adeas-rakit/banksampah-ledger/internal/jwt"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/claims"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/customer"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/operator"
	"github.com/adeas-rakit/banksampah-ledger/pkg/genid"
	"github.com/adeas-rakit/banksampah-ledger/pkg/limiter"
	"github.com/adeas-rakit/banksampah-ledger/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// Attempts at generating a non-colliding account number.
const maxNumberAttempts = 3

type Service struct {
	repo    Repository
	limiter *limiter.PerKey
	logger  logger.Logger
	config  *config.Config
}

func NewService(repo Repository, logger logger.Logger, config *config.Config) (*Service, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	return &Service{
		repo:    repo,
		limiter: limiter.NewPerKey(config.Login.RateEvery, config.Login.Burst),
		logger:  logger,
		config:  config,
	}, nil
}

var _ ServerInterface = (*Service)(nil)

// Customer registration (POST /api/auth/register).
func (s *Service) Register(w http.ResponseWriter, r *http.Request, params RegisterParams) {
	// Create password hash.
	hashPassword, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.config.PasswordHashCost)
	if err != nil {
		ErrorHandlerFunc(w, r, fmt.Errorf("hash password: %w", err))
		return
	}

	c := &customer.Customer{
		Name:     params.Name,
		Password: string(hashPassword),
		Status:   customer.ACTIVE,
	}

	// The generated account number carries a slim collision chance;
	// regenerate on a unique violation.
	for attempt := 0; ; attempt++ {
		c.AccountNumber = genid.AccountNumber()

		err = s.repo.CreateCustomer(r.Context(), c)
		if err == nil {
			break
		}
		if errors.Is(err, errs.ErrDataConflict) && attempt < maxNumberAttempts {
			continue
		}
		ErrorHandlerFunc(w, r, fmt.Errorf("create customer: %w", err))
		return
	}

	if err = s.setAuthCookie(w, c.ID, claims.RoleCustomer); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	// The customer needs the account number to log in and to print
	// on their membership card.
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(c); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}
}

// Customer authentication (POST /api/auth/login).
func (s *Service) Login(w http.ResponseWriter, r *http.Request, params LoginParams) {
	if !s.limiter.Allow(params.AccountNumber) {
		ErrorHandlerFunc(w, r, fmt.Errorf("%w: too many login attempts", errs.ErrRateLimit))
		return
	}

	c, err := s.repo.GetCustomerByAccountNumber(r.Context(), params.AccountNumber)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: account %q not found",
				errs.ErrInvalidCredentials, params.AccountNumber))
			return
		}
		ErrorHandlerFunc(w, r, fmt.Errorf("get customer %q: %w", params.AccountNumber, err))
		return
	}

	if err = comparePasswords(c.Password, params.Password); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	s.limiter.Forget(params.AccountNumber)

	if err = s.setAuthCookie(w, c.ID, claims.RoleCustomer); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Operator authentication (POST /api/auth/operator/login).
func (s *Service) OperatorLogin(w http.ResponseWriter, r *http.Request, params OperatorLoginParams) {
	if !s.limiter.Allow(params.Login) {
		ErrorHandlerFunc(w, r, fmt.Errorf("%w: too many login attempts", errs.ErrRateLimit))
		return
	}

	o, err := s.repo.GetOperatorByLogin(r.Context(), params.Login)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: operator %q not found",
				errs.ErrInvalidCredentials, params.Login))
			return
		}
		ErrorHandlerFunc(w, r, fmt.Errorf("get operator %q: %w", params.Login, err))
		return
	}

	if err = comparePasswords(o.Password, params.Password); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	s.limiter.Forget(params.Login)

	if err = s.setAuthCookie(w, o.ID, claims.RoleOperator); err != nil {
		ErrorHandlerFunc(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// CustomerMiddleware authorizes a customer and stores it in the
// request context.
func (s *Service) CustomerMiddleware(next http.Handler) http.Handler {
	f := func(w http.ResponseWriter, r *http.Request) {
		authClaims, err := s.claimsFromCookie(r)
		if err != nil {
			ErrorHandlerFunc(w, r, err)
			return
		}
		if authClaims.Role != claims.RoleCustomer {
			ErrorHandlerFunc(w, r, &errs.InvalidAuthorizationError{Message: "customer token required"})
			return
		}

		c, err := s.repo.GetCustomerByID(r.Context(), authClaims.UserID)
		if err != nil {
			ErrorHandlerFunc(w, r, fmt.Errorf("get customer %d: %w", authClaims.UserID, err))
			return
		}

		next.ServeHTTP(w, r.WithContext(customer.NewContext(r.Context(), c)))
	}

	return http.HandlerFunc(f)
}

// OperatorMiddleware authorizes an operator and stores it in the
// request context.
func (s *Service) OperatorMiddleware(next http.Handler) http.Handler {
	f := func(w http.ResponseWriter, r *http.Request) {
		authClaims, err := s.claimsFromCookie(r)
		if err != nil {
			ErrorHandlerFunc(w, r, err)
			return
		}
		if authClaims.Role != claims.RoleOperator {
			ErrorHandlerFunc(w, r, &errs.InvalidAuthorizationError{Message: "operator token required"})
			return
		}

		o, err := s.repo.GetOperatorByID(r.Context(), authClaims.UserID)
		if err != nil {
			ErrorHandlerFunc(w, r, fmt.Errorf("get operator %d: %w", authClaims.UserID, err))
			return
		}

		next.ServeHTTP(w, r.WithContext(operator.NewContext(r.Context(), o)))
	}

	return http.HandlerFunc(f)
}

func (s *Service) setAuthCookie(w http.ResponseWriter, id int, role claims.Role) error {
	authToken, err := jwt.BuildString(id, role, s.config.JWT.SigningKey, s.config.JWT.Expiration)
	if err != nil {
		return fmt.Errorf("build token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Authorization",
		Value:    authToken,
		Expires:  time.Now().Add(s.config.JWT.Expiration),
		HttpOnly: true,
	})

	return nil
}

func (s *Service) claimsFromCookie(r *http.Request) (*claims.Auth, error) {
	authCookie, err := r.Cookie("Authorization")
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, fmt.Errorf("authorization token: %w", errs.ErrNotFound)
		}
		return nil, fmt.Errorf("authorization token: %w", err)
	}

	authClaims, err := jwt.GetClaims(authCookie.Value, s.config.JWT.SigningKey)
	if err != nil {
		return nil, &errs.InvalidAuthorizationError{Message: err.Error()}
	}

	return authClaims, nil
}

func comparePasswords(hashed, provided string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(provided))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("%w: password", errs.ErrInvalidCredentials)
		}
		return fmt.Errorf("compare passwords: %w", err)
	}
	return nil
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	var authErr *errs.InvalidAuthorizationError

	switch {
	// Status Bad Request (400).
	case errors.Is(err, errs.ErrRequiredBodyParam) ||
		errors.Is(err, errs.ErrInvalidPayload) ||
		errors.Is(err, errs.ErrInvalidContentType):
		code = http.StatusBadRequest

	// Status Unauthorized (401).
	case errors.Is(err, errs.ErrNotFound) ||
		errors.Is(err, errs.ErrInvalidCredentials) ||
		errors.As(err, &authErr):
		code = http.StatusUnauthorized

	// Status Conflict (409).
	case errors.Is(err, errs.ErrDataConflict):
		code = http.StatusConflict

	// Status Too Many Requests (429).
	case errors.Is(err, errs.ErrRateLimit):
		code = http.StatusTooManyRequests
	}

	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
