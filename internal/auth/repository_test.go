package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/adeas-rakit/banksampah-ledger/internal/models/customer"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/errs"
	"github.com/adeas-rakit/banksampah-ledger/internal/models/operator"
)

// Lock in case of t.Parallel call.
type mockRepository struct {
	customers []customer.Customer
	operators []operator.Operator
	mu        sync.RWMutex
}

func (m *mockRepository) GetCustomerByID(_ context.Context, id int) (*customer.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.customers {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockRepository) GetCustomerByAccountNumber(_ context.Context, number string) (*customer.Customer, error) {
	if number == "panic" {
		return nil, errors.New("don't panic!")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.customers {
		if item.AccountNumber == number {
			return &item, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockRepository) CreateCustomer(_ context.Context, c *customer.Customer) error {
	if c.Name == "panic" {
		return errors.New("don't panic!")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	maxID := 0
	for _, item := range m.customers {
		if item.AccountNumber == c.AccountNumber {
			return &errs.AlreadyExistsError{FieldName: "account_number"}
		}
		maxID = max(maxID, item.ID)
	}
	c.ID = maxID + 1
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	m.customers = append(m.customers, *c)
	return nil
}

func (m *mockRepository) GetOperatorByID(_ context.Context, id int) (*operator.Operator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.operators {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockRepository) GetOperatorByLogin(_ context.Context, login string) (*operator.Operator, error) {
	if login == "panic" {
		return nil, errors.New("don't panic!")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.operators {
		if item.Login == login {
			return &item, nil
		}
	}
	return nil, errs.ErrNotFound
}
