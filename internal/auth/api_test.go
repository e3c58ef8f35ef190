package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adeas-rakit/banksampah-ledger/internal/config"
	"github.com/adeas-rakit/banksampah-ledger/internal/jwt"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/claims"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/customer"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/operator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		PasswordHashCost: 14,
		JWT: config.JWT{
			Expiration: 3 * time.Hour,
			SigningKey: "Kyoto",
		},
		Login: config.Login{
			RateEvery: time.Hour,
			Burst:     5,
		},
	}
}

// bcrypt hash of "gopher" with cost 14.
const gopherHash = "$2a$14$exSjgqssYnKcJdJY0wJcTeqdpdrH7e4tz8wM3brPZaVtoDV/75UW6"

func TestRegisterOperationMiddleware(t *testing.T) {
	path := "/api/auth/register"

	type want struct {
		response   string
		statusCode int
	}

	tests := []struct {
		name    string
		payload io.Reader
		want    want
		wantErr bool
	}{
		{
			name:    "OK",
			payload: strings.NewReader(`{"name":"Budi","password":"password"}`),
			want: want{
				statusCode: http.StatusOK,
				response:   "",
			},
			wantErr: false,
		},
		{
			name:    "empty body",
			payload: strings.NewReader(""),
			want: want{
				statusCode: http.StatusBadRequest,
				response:   fmt.Sprintf("%v: empty body", errs.ErrInvalidPayload),
			},
			wantErr: true,
		},
		{
			name:    "malformed body",
			payload: strings.NewReader(`{"name":`),
			want: want{
				statusCode: http.StatusBadRequest,
				response: fmt.Sprintf("%v: unexpected end of JSON input",
					errs.ErrInvalidPayload),
			},
			wantErr: true,
		},
		{
			name:    "empty name",
			payload: strings.NewReader(`{"name":"","password":"password"}`),
			want: want{
				statusCode: http.StatusBadRequest,
				response:   (&errs.RequiredJSONBodyParamError{ParamName: "name"}).Error(),
			},
			wantErr: true,
		},
		{
			name:    "empty password",
			payload: strings.NewReader(`{"name":"Budi","password":""}`),
			want: want{
				statusCode: http.StatusBadRequest,
				response:   (&errs.RequiredJSONBodyParamError{ParamName: "password"}).Error(),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, path, tt.payload)
			r.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()

			siw := ServerInterfaceWrapper{
				Handler:          &mockAuthService{},
				ErrorHandlerFunc: ErrorHandlerFunc,
			}

			siw.Register(w, r)

			res := w.Result()

			errorResponse := new(errs.JSON)

			if tt.wantErr {
				err := json.NewDecoder(res.Body).Decode(&errorResponse)
				require.NoError(t, err, "failed to decode JSON response")
			}
			r.Body.Close()
			res.Body.Close()

			assert.Equal(t, tt.want.statusCode, res.StatusCode, "status mismatch")
			if tt.wantErr {
				assert.Equal(t, tt.want.response, errorResponse.Error, "error message mismatch")
			}
		})
	}
}

func TestLoginOperationMiddleware(t *testing.T) {
	path := "/api/auth/login"

	type want struct {
		response   string
		statusCode int
	}

	tests := []struct {
		name    string
		payload io.Reader
		want    want
		wantErr bool
	}{
		{
			name:    "OK",
			payload: strings.NewReader(`{"account_number":"BSN0000000001","password":"password"}`),
			want: want{
				statusCode: http.StatusOK,
				response:   "",
			},
			wantErr: false,
		},
		{
			name:    "empty body",
			payload: strings.NewReader(""),
			want: want{
				statusCode: http.StatusBadRequest,
				response:   fmt.Sprintf("%v: empty body", errs.ErrInvalidPayload),
			},
			wantErr: true,
		},
		{
			name:    "empty account number",
			payload: strings.NewReader(`{"account_number":"","password":"password"}`),
			want: want{
				statusCode: http.StatusBadRequest,
				response:   (&errs.RequiredJSONBodyParamError{ParamName: "account_number"}).Error(),
			},
			wantErr: true,
		},
		{
			name:    "empty password",
			payload: strings.NewReader(`{"account_number":"BSN0000000001","password":""}`),
			want: want{
				statusCode: http.StatusBadRequest,
				response:   (&errs.RequiredJSONBodyParamError{ParamName: "password"}).Error(),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, path, tt.payload)
			r.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()

			siw := ServerInterfaceWrapper{
				Handler:          &mockAuthService{},
				ErrorHandlerFunc: ErrorHandlerFunc,
			}

			siw.Login(w, r)

			res := w.Result()

			errorResponse := new(errs.JSON)

			if tt.wantErr {
				err := json.NewDecoder(res.Body).Decode(&errorResponse)
				require.NoError(t, err, "failed to decode JSON response")
			}
			r.Body.Close()
			res.Body.Close()

			assert.Equal(t, tt.want.statusCode, res.StatusCode, "status mismatch")
			if tt.wantErr {
				assert.Equal(t, tt.want.response, errorResponse.Error, "error message mismatch")
			}
		})
	}
}

func TestOperatorLoginOperationMiddleware(t *testing.T) {
	path := "/api/auth/operator/login"

	type want struct {
		response   string
		statusCode int
	}

	tests := []struct {
		name    string
		payload io.Reader
		want    want
		wantErr bool
	}{
		{
			name:    "OK",
			payload: strings.NewReader(`{"login":"operator","password":"password"}`),
			want: want{
				statusCode: http.StatusOK,
				response:   "",
			},
			wantErr: false,
		},
		{
			name:    "empty login",
			payload: strings.NewReader(`{"login":"","password":"password"}`),
			want: want{
				statusCode: http.StatusBadRequest,
				response:   (&errs.RequiredJSONBodyParamError{ParamName: "login"}).Error(),
			},
			wantErr: true,
		},
		{
			name:    "empty password",
			payload: strings.NewReader(`{"login":"operator","password":""}`),
			want: want{
				statusCode: http.StatusBadRequest,
				response:   (&errs.RequiredJSONBodyParamError{ParamName: "password"}).Error(),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, path, tt.payload)
			r.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()

			siw := ServerInterfaceWrapper{
				Handler:          &mockAuthService{},
				ErrorHandlerFunc: ErrorHandlerFunc,
			}

			siw.OperatorLogin(w, r)

			res := w.Result()

			errorResponse := new(errs.JSON)

			if tt.wantErr {
				err := json.NewDecoder(res.Body).Decode(&errorResponse)
				require.NoError(t, err, "failed to decode JSON response")
			}
			r.Body.Close()
			res.Body.Close()

			assert.Equal(t, tt.want.statusCode, res.StatusCode, "status mismatch")
			if tt.wantErr {
				assert.Equal(t, tt.want.response, errorResponse.Error, "error message mismatch")
			}
		})
	}
}

func TestRegisterHandler(t *testing.T) {
	path := "/api/auth/register"

	type want struct {
		response   string
		statusCode int
	}

	tests := []struct {
		name    string
		params  RegisterParams
		repo    *mockRepository
		want    want
		wantErr bool
	}{
		{
			name: "OK",
			params: RegisterParams{
				Name:     "Budi",
				Password: "gopher",
			},
			repo: &mockRepository{},
			want: want{
				statusCode: http.StatusOK,
				response:   "",
			},
			wantErr: false,
		},
		{
			name: "failed to create customer",
			params: RegisterParams{
				Name:     "panic",
				Password: "oh-my-zsh",
			},
			repo: &mockRepository{},
			want: want{
				statusCode: http.StatusInternalServerError,
				response:   "create customer: don't panic!",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, path, http.NoBody)

			w := httptest.NewRecorder()

			cfg := testConfig()
			authHandler, err := NewService(tt.repo, nil, cfg)
			require.NoError(t, err, "failed to init service")

			authHandler.Register(w, r, tt.params)

			res := w.Result()

			errorResponse := new(errs.JSON)

			if tt.wantErr {
				err = json.NewDecoder(res.Body).Decode(&errorResponse)
				require.NoError(t, err, "failed to decode JSON response")
			}

			assert.Equal(t, tt.want.statusCode, res.StatusCode, "status mismatch")
			switch {
			case tt.wantErr:
				assert.Equal(t, tt.want.response, errorResponse.Error, "error message mismatch")

			case !tt.wantErr:
				created := new(customer.Customer)
				err = json.NewDecoder(res.Body).Decode(created)
				require.NoError(t, err, "failed to decode created customer")
				assert.NotEmpty(t, created.AccountNumber, "account number not assigned")
				assert.Equal(t, customer.ACTIVE, created.Status, "new customer must be active")
				assert.True(t, created.Balance.IsZero(), "new customer must have zero balance")

				var token string

				for _, c := range res.Cookies() {
					if c.Name == "Authorization" {
						token = c.Value
						break
					}
				}

				require.NotEmpty(t, token, "the call was successful, but the authorization cookie was not set")

				authClaims, err := jwt.GetClaims(token, cfg.JWT.SigningKey)
				require.NoError(t, err, "jwt: get claims")
				assert.Equal(t, created.ID, authClaims.UserID, "token user id mismatch")
				assert.Equal(t, claims.RoleCustomer, authClaims.Role, "token role mismatch")
			}
			r.Body.Close()
			res.Body.Close()
		})
	}
}

func TestLoginHandler(t *testing.T) {
	path := "/api/auth/login"

	budi := customer.Customer{
		ID:            1,
		AccountNumber: "BSN0000000001",
		Name:          "Budi",
		Password:      gopherHash,
		Status:        customer.ACTIVE,
	}

	type want struct {
		response   string
		statusCode int
	}

	tests := []struct {
		name    string
		params  LoginParams
		repo    *mockRepository
		want    want
		wantErr bool
	}{
		{
			name: "OK",
			params: LoginParams{
				AccountNumber: "BSN0000000001",
				Password:      "gopher",
			},
			repo: &mockRepository{customers: []customer.Customer{budi}},
			want: want{
				statusCode: http.StatusOK,
				response:   "",
			},
			wantErr: false,
		},
		{
			name: "no such account",
			params: LoginParams{
				AccountNumber: "BSN0000000002",
				Password:      "gopher",
			},
			repo: &mockRepository{},
			want: want{
				statusCode: http.StatusUnauthorized,
				response: fmt.Sprintf(`%v: account "BSN0000000002" not found`,
					errs.ErrInvalidCredentials),
			},
			wantErr: true,
		},
		{
			name: "failed to get customer from database",
			params: LoginParams{
				AccountNumber: "panic",
				Password:      "oh-my-zsh",
			},
			repo: &mockRepository{},
			want: want{
				statusCode: http.StatusInternalServerError,
				response:   `get customer "panic": don't panic!`,
			},
			wantErr: true,
		},
		{
			name: "wrong password",
			params: LoginParams{
				AccountNumber: "BSN0000000001",
				Password:      "no_gopher",
			},
			repo: &mockRepository{customers: []customer.Customer{budi}},
			want: want{
				statusCode: http.StatusUnauthorized,
				response:   fmt.Sprintf("%v: password", errs.ErrInvalidCredentials),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, path, http.NoBody)

			w := httptest.NewRecorder()

			cfg := testConfig()
			authHandler, err := NewService(tt.repo, nil, cfg)
			require.NoError(t, err, "failed to init service")

			authHandler.Login(w, r, tt.params)

			res := w.Result()

			errorResponse := new(errs.JSON)

			if tt.wantErr {
				err = json.NewDecoder(res.Body).Decode(&errorResponse)
				require.NoError(t, err, "failed to decode JSON response")
			}
			r.Body.Close()
			res.Body.Close()

			assert.Equal(t, tt.want.statusCode, res.StatusCode, "status mismatch")
			switch {
			case tt.wantErr:
				assert.Equal(t, tt.want.response, errorResponse.Error, "error message mismatch")

			case !tt.wantErr:
				var token string

				for _, c := range res.Cookies() {
					if c.Name == "Authorization" {
						token = c.Value
						break
					}
				}

				require.NotEmpty(t, token, "the call was successful, but the authorization cookie was not set")

				authClaims, err := jwt.GetClaims(token, cfg.JWT.SigningKey)
				require.NoError(t, err, "jwt: get claims")
				assert.Equal(t, budi.ID, authClaims.UserID, "token user id mismatch")
				assert.Equal(t, claims.RoleCustomer, authClaims.Role, "token role mismatch")
			}
		})
	}
}

func TestLoginHandler_RateLimit(t *testing.T) {
	path := "/api/auth/login"

	cfg := testConfig()
	cfg.Login.Burst = 2

	repo := &mockRepository{customers: []customer.Customer{{
		ID:            1,
		AccountNumber: "BSN0000000001",
		Name:          "Budi",
		Password:      gopherHash,
		Status:        customer.ACTIVE,
	}}}

	authHandler, err := NewService(repo, nil, cfg)
	require.NoError(t, err, "failed to init service")

	params := LoginParams{
		AccountNumber: "BSN0000000001",
		Password:      "no_gopher",
	}

	// Burn the burst with failed attempts.
	for i := 0; i < cfg.Login.Burst; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, path, http.NoBody)
		authHandler.Login(w, r, params)
		assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode, "attempt %d", i+1)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, path, http.NoBody)
	authHandler.Login(w, r, params)
	assert.Equal(t, http.StatusTooManyRequests, w.Result().StatusCode,
		"exhausted burst must be rejected")
}

func TestOperatorLoginHandler(t *testing.T) {
	path := "/api/auth/operator/login"

	op := operator.Operator{
		ID:       7,
		Login:    "operator",
		Password: gopherHash,
		UnitID:   3,
	}

	type want struct {
		response   string
		statusCode int
	}

	tests := []struct {
		name    string
		params  OperatorLoginParams
		repo    *mockRepository
		want    want
		wantErr bool
	}{
		{
			name: "OK",
			params: OperatorLoginParams{
				Login:    "operator",
				Password: "gopher",
			},
			repo: &mockRepository{operators: []operator.Operator{op}},
			want: want{
				statusCode: http.StatusOK,
				response:   "",
			},
			wantErr: false,
		},
		{
			name: "no such operator",
			params: OperatorLoginParams{
				Login:    "ghost",
				Password: "gopher",
			},
			repo: &mockRepository{},
			want: want{
				statusCode: http.StatusUnauthorized,
				response: fmt.Sprintf(`%v: operator "ghost" not found`,
					errs.ErrInvalidCredentials),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, path, http.NoBody)

			w := httptest.NewRecorder()

			cfg := testConfig()
			authHandler, err := NewService(tt.repo, nil, cfg)
			require.NoError(t, err, "failed to init service")

			authHandler.OperatorLogin(w, r, tt.params)

			res := w.Result()

			errorResponse := new(errs.JSON)

			if tt.wantErr {
				err = json.NewDecoder(res.Body).Decode(&errorResponse)
				require.NoError(t, err, "failed to decode JSON response")
			}
			r.Body.Close()
			res.Body.Close()

			assert.Equal(t, tt.want.statusCode, res.StatusCode, "status mismatch")
			switch {
			case tt.wantErr:
				assert.Equal(t, tt.want.response, errorResponse.Error, "error message mismatch")

			case !tt.wantErr:
				var token string

				for _, c := range res.Cookies() {
					if c.Name == "Authorization" {
						token = c.Value
						break
					}
				}

				require.NotEmpty(t, token, "the call was successful, but the authorization cookie was not set")

				authClaims, err := jwt.GetClaims(token, cfg.JWT.SigningKey)
				require.NoError(t, err, "jwt: get claims")
				assert.Equal(t, op.ID, authClaims.UserID, "token user id mismatch")
				assert.Equal(t, claims.RoleOperator, authClaims.Role, "token role mismatch")
			}
		})
	}
}
