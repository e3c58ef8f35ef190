package balance

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Get overall balance (GET /api/balance).
	GetBalance(w http.ResponseWriter, r *http.Request)
	// Get per-unit balances (GET /api/balance/units).
	GetUnitBalances(w http.ResponseWriter, r *http.Request)
	// Reconcile counters against history (GET /api/balance/reconcile).
	GetReconciliation(w http.ResponseWriter, r *http.Request)
}

type MiddlewareFunc func(http.Handler) http.Handler

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

	r.Group(func(r chi.Router) {
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}
		r.Get(options.BaseURL+"/balance", si.GetBalance)
		r.Get(options.BaseURL+"/balance/units", si.GetUnitBalances)
		r.Get(options.BaseURL+"/balance/reconcile", si.GetReconciliation)
	})

	return r
}
