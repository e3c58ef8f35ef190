package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adeas-rakit/banksampah-ledger/internal/config"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/catalog"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	unitID     int
	wasteTypes []*catalog.WasteType
}

func (m *mockRepository) PriceOf(_ context.Context, wasteTypeID, unitID int) (decimal.Decimal, error) {
	if unitID != m.unitID {
		return decimal.Zero, errs.ErrNotFound
	}
	for _, wt := range m.wasteTypes {
		if wt.ID == wasteTypeID {
			return wt.Price, nil
		}
	}
	return decimal.Zero, errs.ErrNotFound
}

func (m *mockRepository) GetWasteTypesByUnitID(_ context.Context, unitID int) ([]*catalog.WasteType, error) {
	if unitID != m.unitID || len(m.wasteTypes) == 0 {
		return nil, errs.ErrNotFound
	}
	return m.wasteTypes, nil
}

func TestGetWasteTypesHandler(t *testing.T) {
	repo := &mockRepository{
		unitID: 3,
		wasteTypes: []*catalog.WasteType{
			{ID: 10, UnitID: 3, Name: "Plastik PET", Price: decimal.NewFromInt(1500), Active: true},
			{ID: 11, UnitID: 3, Name: "Kardus", Price: decimal.NewFromInt(2000), Active: true},
		},
	}

	service, err := NewService(repo, nil, &config.Config{})
	require.NoError(t, err, "failed to init service")

	router := chi.NewRouter()
	HandlerWithOptions(service, ChiServerOptions{
		BaseURL:          "/api",
		BaseRouter:       router,
		ErrorHandlerFunc: ErrorHandlerFunc,
	})

	t.Run("OK", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/units/3/waste-types", http.NoBody)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		res := w.Result()
		defer res.Body.Close()

		require.Equal(t, http.StatusOK, res.StatusCode, "status mismatch")

		var got []*catalog.WasteType
		require.NoError(t, json.NewDecoder(res.Body).Decode(&got),
			"failed to decode JSON response")
		require.Len(t, got, 2)
		assert.Equal(t, "Plastik PET", got[0].Name)
	})

	t.Run("unknown unit", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/units/9/waste-types", http.NoBody)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Result().StatusCode, "status mismatch")
	})

	t.Run("invalid unit id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/units/abc/waste-types", http.NoBody)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode, "status mismatch")
	})
}
