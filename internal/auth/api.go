package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/go-chi/chi/v5"
)

// RegisterParams defines parameters for Register.
type RegisterParams struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginParams defines parameters for Login.
type LoginParams struct {
	AccountNumber string `json:"account_number"`
	Password      string `json:"password"`
}

// OperatorLoginParams defines parameters for OperatorLogin.
type OperatorLoginParams struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Customer registration (POST /api/auth/register).
	Register(w http.ResponseWriter, r *http.Request, params RegisterParams)
	// Customer authentication (POST /api/auth/login).
	Login(w http.ResponseWriter, r *http.Request, params LoginParams)
	// Operator authentication (POST /api/auth/operator/login).
	OperatorLogin(w http.ResponseWriter, r *http.Request, params OperatorLoginParams)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// Register operation middleware.
func (siw *ServerInterfaceWrapper) Register(w http.ResponseWriter, r *http.Request) {
	// ------------- Parse and validate request body params ----------

	var params RegisterParams

	if err := decodeBody(r, &params); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	// ------------- Required JSON body parameter "name" --------------

	if params.Name == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "name"})
		return
	}

	// ------------- Required JSON body parameter "password" ----------

	if params.Password == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "password"})
		return
	}

	siw.Handler.Register(w, r, params)
}

// Login operation middleware.
func (siw *ServerInterfaceWrapper) Login(w http.ResponseWriter, r *http.Request) {
	// ------------- Parse and validate request body params ----------

	var params LoginParams

	if err := decodeBody(r, &params); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	// ------------- Required JSON body parameter "account_number" ----

	if params.AccountNumber == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "account_number"})
		return
	}

	// ------------- Required JSON body parameter "password" ----------

	if params.Password == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "password"})
		return
	}

	siw.Handler.Login(w, r, params)
}

// Operator login operation middleware.
func (siw *ServerInterfaceWrapper) OperatorLogin(w http.ResponseWriter, r *http.Request) {
	// ------------- Parse and validate request body params ----------

	var params OperatorLoginParams

	if err := decodeBody(r, &params); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	// ------------- Required JSON body parameter "login" -------------

	if params.Login == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "login"})
		return
	}

	// ------------- Required JSON body parameter "password" ----------

	if params.Password == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "password"})
		return
	}

	siw.Handler.OperatorLogin(w, r, params)
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty body", errs.ErrInvalidPayload)
	}

	if err = json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s", errs.ErrInvalidPayload, err)
	}

	return nil
}

type ChiServerOptions struct {
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
	BaseRouter       chi.Router
	BaseURL          string
	Middlewares      []MiddlewareFunc
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
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}
		r.Post(options.BaseURL+"/auth/register", wrapper.Register)
		r.Post(options.BaseURL+"/auth/login", wrapper.Login)
		r.Post(options.BaseURL+"/auth/operator/login", wrapper.OperatorLogin)
	})

	return r
}
