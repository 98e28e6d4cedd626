package ledger

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seededService builds a ledger with one customer, one farm and the default
// accounts, backed by no store.
func seededService(t *testing.T) *Service {
	t.Helper()

	svc := NewService(models.DefaultState(), nil, nil)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, CustomerDraft{Name: "Ali Traders", Phone: "0300-1234567"})
	require.NoError(t, err)
	_, err = svc.AddFarm(ctx, FarmDraft{Name: "Shed A", InitialStock: 5000})
	require.NoError(t, err)

	return svc
}

func TestRecordSaleDerivesTotalAndVoucher(t *testing.T) {
	svc := seededService(t)

	sale, voucher, err := svc.RecordSale(context.Background(), SaleDraft{
		Date:          "2026-08-01",
		CustomerID:    1,
		FarmID:        1,
		VehicleNumber: "leb-4521",
		Chickens:      450,
		Weight:        dec("620.5"),
		Rate:          dec("310"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, sale.ID)
	assert.True(t, sale.Total.Equal(dec("192355")), "total = weight * rate, got %s", sale.Total)

	assert.Equal(t, sale.ID, voucher.RelatedID)
	assert.Equal(t, models.RelatedSale, voucher.RelatedType)
	assert.True(t, voucher.Amount.Equal(sale.Total))
	assert.Equal(t, "Sale #1 - Ali Traders (leb-4521)", voucher.Description)
	assert.Equal(t, "Customer - Ali Traders", voucher.DebitAccount)
	assert.Equal(t, "Sales - Shed A", voucher.CreditAccount)
}

func TestRecordSaleValidation(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		draft SaleDraft
		want  error
	}{
		{"bad date", SaleDraft{Date: "01-08-2026", CustomerID: 1, FarmID: 1, Chickens: 10, Weight: dec("1"), Rate: dec("1")}, ErrValidation},
		{"zero chickens", SaleDraft{Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 0, Weight: dec("1"), Rate: dec("1")}, ErrValidation},
		{"negative weight", SaleDraft{Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 10, Weight: dec("-1"), Rate: dec("1")}, ErrValidation},
		{"zero rate", SaleDraft{Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 10, Weight: dec("1"), Rate: dec("0")}, ErrValidation},
		{"missing customer", SaleDraft{Date: "2026-08-01", CustomerID: 99, FarmID: 1, Chickens: 10, Weight: dec("1"), Rate: dec("1")}, ErrNotFound},
		{"missing farm", SaleDraft{Date: "2026-08-01", CustomerID: 1, FarmID: 99, Chickens: 10, Weight: dec("1"), Rate: dec("1")}, ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.RecordSale(ctx, tc.draft)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// Failed mutations leave no trace.
	st := svc.Snapshot()
	assert.Empty(t, st.Sales)
	assert.Empty(t, st.Vouchers)
}

func TestReceivableAccountResolution(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	rec, voucher, err := svc.RecordReceivable(ctx, ReceivableDraft{
		Date: "2026-08-02", CustomerID: 1, AccountID: 2, Amount: dec("50000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bank Account", voucher.DebitAccount)
	assert.Equal(t, "Customer - Ali Traders", voucher.CreditAccount)
	assert.Equal(t, "Receipt #1 - Ali Traders", voucher.Description)
	assert.Equal(t, rec.ID, voucher.RelatedID)

	// Unset account falls back to the cash label.
	_, voucher, err = svc.RecordReceivable(ctx, ReceivableDraft{
		Date: "2026-08-03", CustomerID: 1, Amount: dec("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cash in Hand", voucher.DebitAccount)

	// A nonzero but unknown account is rejected.
	_, _, err = svc.RecordReceivable(ctx, ReceivableDraft{
		Date: "2026-08-03", CustomerID: 1, AccountID: 42, Amount: dec("100"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEveryTransactionHasExactlyOneVoucher(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := svc.RecordSale(ctx, SaleDraft{
			Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 100, Weight: dec("150"), Rate: dec("300"),
		})
		require.NoError(t, err)
	}
	_, _, err := svc.RecordReceivable(ctx, ReceivableDraft{Date: "2026-08-02", CustomerID: 1, Amount: dec("10000")})
	require.NoError(t, err)

	st := svc.Snapshot()
	require.Len(t, st.Vouchers, 4)

	type pairing struct {
		kind models.RelatedType
		id   int
	}
	seen := map[pairing]int{}
	for _, v := range st.Vouchers {
		seen[pairing{v.RelatedType, v.RelatedID}]++
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, "pairing %v duplicated", key)
	}
}

func TestUpdateSaleResyncsVoucher(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	sale, voucher, err := svc.RecordSale(ctx, SaleDraft{
		Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 100, Weight: dec("150"), Rate: dec("300"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateSale(ctx, sale.ID, SaleDraft{
		Date: "2026-08-05", CustomerID: 1, FarmID: 1, Chickens: 120, Weight: dec("180"), Rate: dec("320"),
	})
	require.NoError(t, err)
	assert.True(t, updated.Total.Equal(dec("57600")))

	st := svc.Snapshot()
	require.Len(t, st.Vouchers, 1)
	assert.Equal(t, voucher.ID, st.Vouchers[0].ID, "voucher id preserved across update")
	assert.Equal(t, "2026-08-05", st.Vouchers[0].Date)
	assert.True(t, st.Vouchers[0].Amount.Equal(updated.Total))
}

func TestUpdateSaleRecreatesMissingVoucher(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	sale, _, err := svc.RecordSale(ctx, SaleDraft{
		Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 100, Weight: dec("150"), Rate: dec("300"),
	})
	require.NoError(t, err)

	// Simulate an imported snapshot that carries the sale without its voucher.
	st := svc.Snapshot()
	st.Vouchers = []models.Voucher{}
	payload, err := json.Marshal(st)
	require.NoError(t, err)
	_, err = svc.Import(ctx, payload)
	require.NoError(t, err)

	_, err = svc.UpdateSale(ctx, sale.ID, SaleDraft{
		Date: "2026-08-02", CustomerID: 1, FarmID: 1, Chickens: 100, Weight: dec("150"), Rate: dec("300"),
	})
	require.NoError(t, err)

	after := svc.Snapshot()
	require.Len(t, after.Vouchers, 1)
	assert.Equal(t, sale.ID, after.Vouchers[0].RelatedID)
	assert.Equal(t, models.RelatedSale, after.Vouchers[0].RelatedType)
}

func TestDeleteSaleRemovesVoucher(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	sale, _, err := svc.RecordSale(ctx, SaleDraft{
		Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 100, Weight: dec("150"), Rate: dec("300"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(ctx, sale.ID))

	st := svc.Snapshot()
	assert.Empty(t, st.Sales)
	assert.Empty(t, st.Vouchers)

	assert.ErrorIs(t, svc.DeleteSale(ctx, sale.ID), ErrNotFound)
}

func TestDeleteCustomerCascadesOnlyItsRecords(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	other, err := svc.AddCustomer(ctx, CustomerDraft{Name: "Bilal & Sons"})
	require.NoError(t, err)

	_, _, err = svc.RecordSale(ctx, SaleDraft{Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 50, Weight: dec("70"), Rate: dec("300")})
	require.NoError(t, err)
	_, _, err = svc.RecordSale(ctx, SaleDraft{Date: "2026-08-01", CustomerID: other.ID, FarmID: 1, Chickens: 60, Weight: dec("85"), Rate: dec("300")})
	require.NoError(t, err)
	_, _, err = svc.RecordReceivable(ctx, ReceivableDraft{Date: "2026-08-02", CustomerID: 1, Amount: dec("5000")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCustomer(ctx, 1))

	st := svc.Snapshot()
	require.Len(t, st.Customers, 1)
	assert.Equal(t, other.ID, st.Customers[0].ID)
	require.Len(t, st.Sales, 1)
	assert.Equal(t, other.ID, st.Sales[0].CustomerID)
	assert.Empty(t, st.Receivables)
	require.Len(t, st.Vouchers, 1)
	assert.Equal(t, st.Sales[0].ID, st.Vouchers[0].RelatedID)
}

func TestDeleteFarmCascadesSalesButNotReceipts(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	_, _, err := svc.RecordSale(ctx, SaleDraft{Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 50, Weight: dec("70"), Rate: dec("300")})
	require.NoError(t, err)
	_, _, err = svc.RecordReceivable(ctx, ReceivableDraft{Date: "2026-08-02", CustomerID: 1, Amount: dec("5000")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFarm(ctx, 1))

	st := svc.Snapshot()
	assert.Empty(t, st.Farms)
	assert.Empty(t, st.Sales)
	require.Len(t, st.Receivables, 1)
	require.Len(t, st.Vouchers, 1)
	assert.Equal(t, models.RelatedReceivable, st.Vouchers[0].RelatedType)
}

func TestIDsAreNotReusedAfterDelete(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	first, _, err := svc.RecordSale(ctx, SaleDraft{Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 10, Weight: dec("15"), Rate: dec("300")})
	require.NoError(t, err)
	second, _, err := svc.RecordSale(ctx, SaleDraft{Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 10, Weight: dec("15"), Rate: dec("300")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(ctx, first.ID))

	third, _, err := svc.RecordSale(ctx, SaleDraft{Date: "2026-08-02", CustomerID: 1, FarmID: 1, Chickens: 10, Weight: dec("15"), Rate: dec("300")})
	require.NoError(t, err)
	assert.Equal(t, second.ID+1, third.ID, "deleting the first sale must not free its id while a later one is live")
}

func TestDeleteAccountLeavesReceiptsIntact(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	_, _, err := svc.RecordReceivable(ctx, ReceivableDraft{Date: "2026-08-02", CustomerID: 1, AccountID: 2, Amount: dec("5000")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, 2))

	st := svc.Snapshot()
	require.Len(t, st.Receivables, 1)
	assert.Equal(t, 2, st.Receivables[0].AccountID)
	// The already-written voucher keeps its original label.
	require.Len(t, st.Vouchers, 1)
	assert.Equal(t, "Bank Account", st.Vouchers[0].DebitAccount)
}

func TestImportRejectsDocumentWithoutFarms(t *testing.T) {
	svc := seededService(t)

	_, err := svc.Import(context.Background(), []byte(`{"customers": []}`))
	assert.ErrorIs(t, err, models.ErrInvalidImport)

	// The running books survive a rejected import.
	assert.Len(t, svc.Snapshot().Customers, 1)
}

func TestExportImportRoundTrip(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	_, _, err := svc.RecordSale(ctx, SaleDraft{Date: "2026-08-01", CustomerID: 1, FarmID: 1, Chickens: 450, Weight: dec("620.5"), Rate: dec("310")})
	require.NoError(t, err)
	_, _, err = svc.RecordReceivable(ctx, ReceivableDraft{Date: "2026-08-02", CustomerID: 1, AccountID: 1, Amount: dec("50000")})
	require.NoError(t, err)

	before := svc.Snapshot()
	payload, err := json.Marshal(before)
	require.NoError(t, err)

	after, err := svc.Import(ctx, payload)
	require.NoError(t, err)

	reencoded, err := json.Marshal(after)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(reencoded))
}

func TestResetRestoresSeedAccounts(t *testing.T) {
	svc := seededService(t)

	st := svc.Reset(context.Background())

	assert.Empty(t, st.Customers)
	assert.Empty(t, st.Farms)
	require.Len(t, st.Accounts, 2)
	assert.Equal(t, "Cash in Hand", st.Accounts[0].Name)
	assert.Equal(t, "Bank Account", st.Accounts[1].Name)
}

type failingStore struct{ calls int }

func (f *failingStore) Save(ctx context.Context, st models.State) error {
	f.calls++
	return assert.AnError
}

func TestMutationsSurviveStoreFailure(t *testing.T) {
	store := &failingStore{}
	svc := NewService(models.DefaultState(), store, nil)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, CustomerDraft{Name: "Ali Traders"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Len(t, svc.Snapshot().Customers, 1, "save failure degrades to memory, not to data loss")
}
