package model

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejection_Is(t *testing.T) {
	err := errors.Wrap(InsufficientFunds(100, 450), "slot")
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.False(t, errors.Is(err, ErrOutOfStock))

	rej, ok := AsRejection(err)
	require.True(t, ok)
	require.NotNil(t, rej.Balance)
	assert.Equal(t, int64(100), *rej.Balance)
	assert.Equal(t, int64(450), rej.Required)
	assert.Contains(t, err.Error(), "balance 100, required 450")
}

func TestRejection_Messages(t *testing.T) {
	next := Date{Year: 2026, Month: 3, Day: 2}
	tests := []struct {
		name string
		err  *Rejection
		want string
	}{
		{"out of stock", OutOfStock(3, 0), "out of stock: item 3, stock 0"},
		{"already claimed", AlreadyClaimed(next, 10), "already claimed today: next eligible 2026-03-02"},
		{"empty tier", EmptyTier(RarityEpic, 100, 900), "empty pool: tier epic"},
		{"item missing", ItemNotFound(9), "item not found: item 9"},
		{"plain", Reject(ErrUnauthorized), "unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsRejection_StoreFailure(t *testing.T) {
	assert.False(t, IsRejection(errors.New("connection refused")))
	assert.True(t, IsRejection(Reject(ErrEmptyPool)))
}

func TestDate(t *testing.T) {
	d := Date{Year: 2024, Month: 2, Day: 28}
	assert.Equal(t, Date{Year: 2024, Month: 2, Day: 29}, d.AddDays(1))
	assert.Equal(t, Date{Year: 2024, Month: 3, Day: 1}, d.AddDays(2))
	assert.Equal(t, 2, d.AddDays(2).DaysSince(d))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, Date{}.IsZero())

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-28"`, string(b))

	var back Date
	require.NoError(t, back.UnmarshalJSON(b))
	assert.Equal(t, d, back)
}

func TestAccount_Debit(t *testing.T) {
	a := &Account{UserID: 1, Balance: 100}
	require.NoError(t, a.Debit(40))
	assert.Equal(t, int64(60), a.Balance)

	err := a.Debit(61)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(60), a.Balance)
}

func TestAccount_Credit(t *testing.T) {
	a := &Account{UserID: 1, Balance: math.MaxInt64 - 5}
	require.NoError(t, a.Credit(5))
	assert.Equal(t, int64(math.MaxInt64), a.Balance)

	require.ErrorIs(t, a.Credit(1), ErrInvalidAmount)
	require.ErrorIs(t, a.Credit(-1), ErrInvalidAmount)
	assert.Equal(t, int64(math.MaxInt64), a.Balance)
}

func TestParseRarity(t *testing.T) {
	r, ok := ParseRarity(" Epic ")
	assert.True(t, ok)
	assert.Equal(t, RarityEpic, r)

	r, ok = ParseRarity("")
	assert.True(t, ok)
	assert.Equal(t, RarityNone, r)

	_, ok = ParseRarity("mythic")
	assert.False(t, ok)
}
