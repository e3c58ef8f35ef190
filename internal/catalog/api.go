package catalog

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/go-chi/chi/v5"
)

// WasteTypesParams defines parameters for GetWasteTypes.
type WasteTypesParams struct {
	UnitID int
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Get active waste type price list (GET /api/units/{unitID}/waste-types).
	GetWasteTypes(w http.ResponseWriter, r *http.Request, params WasteTypesParams)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// Get waste types operation middleware.
func (siw *ServerInterfaceWrapper) GetWasteTypes(w http.ResponseWriter, r *http.Request) {
	// ------------- Path parameter "unitID" --------------------------

	unitID, err := strconv.Atoi(chi.URLParam(r, "unitID"))
	if err != nil || unitID <= 0 {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("%w: unit id", errs.ErrInvalidInput))
		return
	}

	siw.Handler.GetWasteTypes(w, r, WasteTypesParams{UnitID: unitID})
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
		r.Get(options.BaseURL+"/units/{unitID}/waste-types", wrapper.GetWasteTypes)
	})

	return r
}
