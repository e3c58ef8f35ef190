package deposit

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemParams is one weighed deposit line as reported by the scales.
type ItemParams struct {
	WasteTypeID int             `json:"waste_type_id"`
	Weight      decimal.Decimal `json:"weight"`
}

// PostDepositParams defines parameters for PostDeposit.
type PostDepositParams struct {
	AccountNumber  string        `json:"account_number"`
	UnitID         int           `json:"unit_id"`
	Items          []ItemParams  `json:"items"`
	IdempotencyKey uuid.NullUUID `json:"-"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Post new deposit (POST /api/deposits).
	PostDeposit(w http.ResponseWriter, r *http.Request, params PostDepositParams)
	// Get transaction history (GET /api/transactions).
	GetTransactions(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// Post deposit operation middleware.
func (siw *ServerInterfaceWrapper) PostDeposit(w http.ResponseWriter, r *http.Request) {
	// ------------- Parse and validate request body params ----------

	var params PostDepositParams

	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = json.Unmarshal(data, &params); err != nil {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("%w: %s", errs.ErrInvalidPayload, err))
		return
	}

	// ------------- Required JSON body parameter "account_number" ----

	if params.AccountNumber == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "account_number"})
		return
	}

	// ------------- Required JSON body parameter "unit_id" -----------

	if params.UnitID <= 0 {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "unit_id"})
		return
	}

	// ------------- Required JSON body parameter "items" -------------

	if len(params.Items) == 0 {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "items"})
		return
	}

	// ------------- Optional "Idempotency-Key" header ----------------

	if header := r.Header.Get("Idempotency-Key"); header != "" {
		key, err := uuid.Parse(header)
		if err != nil {
			siw.ErrorHandlerFunc(w, r,
				fmt.Errorf("%w: Idempotency-Key must be a UUID", errs.ErrInvalidInput))
			return
		}
		params.IdempotencyKey = uuid.NullUUID{UUID: key, Valid: true}
	}

	siw.Handler.PostDeposit(w, r, params)
}

type ChiServerOptions struct {
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
	BaseRouter       chi.Router
	BaseURL          string
	// Deposits are posted by operators, history is read by customers.
	OperatorMiddlewares []MiddlewareFunc
	CustomerMiddlewares []MiddlewareFunc
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:          si,
		ErrorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		for _, middleware := range options.OperatorMiddlewares {
			r.Use(middleware)
		}
		r.Post(options.BaseURL+"/deposits", wrapper.PostDeposit)
	})
	r.Group(func(r chi.Router) {
		for _, middleware := range options.CustomerMiddlewares {
			r.Use(middleware)
		}
		r.Get(options.BaseURL+"/transactions", si.GetTransactions)
	})

	return r
}
