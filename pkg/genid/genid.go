// Package genid generates human-presentable unique identifiers.
//
// Generated values are random enough to make collisions rare, but the
// database still enforces uniqueness; callers must regenerate and retry
// on a unique violation.
package genid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// TransactionNumber returns a caller-visible transaction number of the
// form TRX-20060102-8f2a91cd.
func TransactionNumber(now time.Time) string {
	return fmt.Sprintf("TRX-%s-%s", now.Format("20060102"), randomHex(4))
}

// AccountNumber returns a customer account number of the form
// BSN0481335729, printable on a membership card QR code.
func AccountNumber() string {
	return "BSN" + randomDigits(10)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return hex.EncodeToString(b)
}

func randomDigits(n int) string {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			panic(err)
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}
