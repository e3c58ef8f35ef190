package withdraw

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// RequestWithdrawalParams defines parameters for RequestWithdrawal.
type RequestWithdrawalParams struct {
	UnitID int             `json:"unit_id"`
	Amount decimal.Decimal `json:"amount"`
}

// DecideWithdrawalParams defines parameters for DecideWithdrawal.
type DecideWithdrawalParams struct {
	Action    Action `json:"action"`
	Reason    string `json:"reason"`
	RequestID int    `json:"-"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Create withdrawal request (POST /api/withdrawals).
	RequestWithdrawal(w http.ResponseWriter, r *http.Request, params RequestWithdrawalParams)
	// Decide withdrawal request (POST /api/withdrawals/{requestID}/decision).
	DecideWithdrawal(w http.ResponseWriter, r *http.Request, params DecideWithdrawalParams)
	// Get customer's withdrawal requests (GET /api/withdrawals).
	GetWithdrawals(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// Request withdrawal operation middleware.
func (siw *ServerInterfaceWrapper) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	// ------------- Parse and validate request body params ----------

	var params RequestWithdrawalParams

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

	// ------------- Required JSON body parameter "unit_id" -----------

	if params.UnitID <= 0 {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "unit_id"})
		return
	}

	// ------------- Required JSON body parameter "amount" ------------

	if params.Amount.IsZero() {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "amount"})
		return
	}

	siw.Handler.RequestWithdrawal(w, r, params)
}

// Decide withdrawal operation middleware.
func (siw *ServerInterfaceWrapper) DecideWithdrawal(w http.ResponseWriter, r *http.Request) {
	// ------------- Path parameter "requestID" -----------------------

	requestID, err := strconv.Atoi(chi.URLParam(r, "requestID"))
	if err != nil || requestID <= 0 {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("%w: request id", errs.ErrInvalidInput))
		return
	}

	// ------------- Parse and validate request body params ----------

	var params DecideWithdrawalParams

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

	params.RequestID = requestID

	// ------------- Required JSON body parameter "action" ------------

	if params.Action != ActionApprove && params.Action != ActionReject {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "action"})
		return
	}

	siw.Handler.DecideWithdrawal(w, r, params)
}

type ChiServerOptions struct {
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
	BaseRouter       chi.Router
	BaseURL          string
	// Requests are filed and listed by customers,
	// decisions are made by operators.
	CustomerMiddlewares []MiddlewareFunc
	OperatorMiddlewares []MiddlewareFunc
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
		for _, middleware := range options.CustomerMiddlewares {
			r.Use(middleware)
		}
		r.Post(options.BaseURL+"/withdrawals", wrapper.RequestWithdrawal)
		r.Get(options.BaseURL+"/withdrawals", si.GetWithdrawals)
	})
	r.Group(func(r chi.Router) {
		for _, middleware := range options.OperatorMiddlewares {
			r.Use(middleware)
		}
		r.Post(options.BaseURL+"/withdrawals/{requestID}/decision", wrapper.DecideWithdrawal)
	})

	return r
}
