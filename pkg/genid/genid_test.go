package genid_test

import (
	"testing"
	"time"

	"github.com/adeas-rakit/banksampah-ledger/pkg/genid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionNumber(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

	n := genid.TransactionNumber(now)
	require.Len(t, n, len("TRX-20260901-")+8)
	assert.Equal(t, "TRX-20260901-", n[:13])

	// Same instant must not mean same number.
	assert.NotEqual(t, n, genid.TransactionNumber(now))
}

func TestAccountNumber(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		n := genid.AccountNumber()
		require.Len(t, n, 13)
		assert.Equal(t, "BSN", n[:3])
		_, dup := seen[n]
		require.False(t, dup, "duplicate account number %s", n)
		seen[n] = struct{}{}
	}
}
