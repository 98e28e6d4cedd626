package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStateSeedsAccounts(t *testing.T) {
	st := DefaultState()

	require.Len(t, st.Accounts, 2)
	assert.Equal(t, "Cash in Hand", st.Accounts[0].Name)
	assert.Equal(t, AccountCash, st.Accounts[0].Type)
	assert.Equal(t, "Bank Account", st.Accounts[1].Name)
	assert.Equal(t, AccountBank, st.Accounts[1].Type)
	assert.Empty(t, st.Customers)
	assert.Empty(t, st.Sales)
}

func TestNormalizeRestoresMissingCollections(t *testing.T) {
	var st State
	st.Normalize()

	assert.NotNil(t, st.Customers)
	assert.NotNil(t, st.Vouchers)
	require.Len(t, st.Accounts, 2, "empty account list gets the seed accounts")

	// Present collections are left alone.
	st2 := State{Accounts: []Account{{ID: 7, Name: "Petty Cash", Type: AccountCash}}}
	st2.Normalize()
	require.Len(t, st2.Accounts, 1)
	assert.Equal(t, 7, st2.Accounts[0].ID)
}

func TestParseImport(t *testing.T) {
	t.Run("rejects missing farms array", func(t *testing.T) {
		_, err := ParseImport([]byte(`{"customers": []}`))
		assert.ErrorIs(t, err, ErrInvalidImport)
	})

	t.Run("rejects non-array customers", func(t *testing.T) {
		_, err := ParseImport([]byte(`{"customers": {}, "farms": []}`))
		assert.ErrorIs(t, err, ErrInvalidImport)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := ParseImport([]byte(`{"customers": [`))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidImport)
	})

	t.Run("accepts minimal document and normalizes the rest", func(t *testing.T) {
		st, err := ParseImport([]byte(`{"customers": [{"id": 1, "name": "Ali Traders"}], "farms": []}`))
		require.NoError(t, err)
		require.Len(t, st.Customers, 1)
		assert.Equal(t, "Ali Traders", st.Customers[0].Name)
		assert.Len(t, st.Accounts, 2)
		assert.NotNil(t, st.Sales)
	})
}

func TestStateJSONRoundTrip(t *testing.T) {
	st := DefaultState()
	st.Customers = []Customer{{ID: 1, Name: "Ali Traders", Phone: "0300-1234567"}}
	st.Farms = []Farm{{ID: 1, Name: "Shed A", InitialStock: 5000}}
	st.Sales = []Sale{{
		ID: 1, Date: "2026-08-01", CustomerID: 1, FarmID: 1, VehicleNumber: "LEB-4521",
		Crates: 12, Chickens: 450,
		Weight: decimal.RequireFromString("620.5"),
		Rate:   decimal.RequireFromString("310"),
		Total:  decimal.RequireFromString("192355"),
	}}
	st.Receivables = []Receivable{{ID: 1, Date: "2026-08-02", CustomerID: 1, AccountID: 1, Amount: decimal.RequireFromString("50000")}}
	st.Vouchers = []Voucher{{
		ID: 1, Date: "2026-08-01", Description: "Sale #1 - Ali Traders (LEB-4521)",
		DebitAccount: "Customer - Ali Traders", CreditAccount: "Sales - Shed A",
		Amount: decimal.RequireFromString("192355"), RelatedID: 1, RelatedType: RelatedSale,
	}}

	payload, err := json.Marshal(st)
	require.NoError(t, err)

	parsed, err := ParseImport(payload)
	require.NoError(t, err)

	// Decimals normalize their exponent through JSON, so compare the rendered
	// documents rather than the structs.
	reencoded, err := json.Marshal(parsed)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(reencoded))
}

func TestNextIDsAreMaxPlusOne(t *testing.T) {
	st := DefaultState()

	assert.Equal(t, 1, st.NextCustomerID())
	assert.Equal(t, 3, st.NextAccountID(), "seed accounts occupy 1 and 2")

	st.Customers = []Customer{{ID: 4}, {ID: 2}}
	assert.Equal(t, 5, st.NextCustomerID(), "gaps are not refilled")

	st.Sales = []Sale{{ID: 9}}
	assert.Equal(t, 10, st.NextSaleID())
	assert.Equal(t, 1, st.NextReceivableID())
	assert.Equal(t, 1, st.NextVoucherID())
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2026-08-31"))
	assert.False(t, ValidDate("2026-8-31"))
	assert.False(t, ValidDate("31-08-2026"))
	assert.False(t, ValidDate("2026-02-30"))
	assert.False(t, ValidDate(""))
}

func TestAccountTypeIsValid(t *testing.T) {
	assert.True(t, AccountCash.IsValid())
	assert.True(t, AccountBank.IsValid())
	assert.True(t, AccountOther.IsValid())
	assert.False(t, AccountType("wallet").IsValid())
}
