package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

// Tab ranges for the mirrored collections, one tab per collection.
const (
	customersRange   = "Customers!A:D"
	farmsRange       = "Farms!A:C"
	accountsRange    = "Accounts!A:D"
	salesRange       = "Sales!A:J"
	receivablesRange = "Receivables!A:E"
	vouchersRange    = "Vouchers!A:H"
	runsRange        = "Runs!A:C"
)

// StateMirror copies the books into a spreadsheet as a human-readable backup.
// The mirror is a one-way export; the spreadsheet is never read back.
type StateMirror struct {
	repo   Repository
	logger *zap.Logger
}

// NewStateMirror wires a mirror on top of the sheets repository.
func NewStateMirror(repo Repository, logger *zap.Logger) *StateMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateMirror{repo: repo, logger: logger}
}

// Mirror rewrites every tab from the snapshot. Tabs are replaced whole, so a
// mirrored spreadsheet never carries rows for deleted records.
func (m *StateMirror) Mirror(ctx context.Context, st models.State) error {
	customers := [][]interface{}{{"ID", "Name", "Phone", "Address"}}
	for _, c := range st.Customers {
		customers = append(customers, []interface{}{c.ID, c.Name, c.Phone, c.Address})
	}

	farms := [][]interface{}{{"ID", "Name", "Initial Stock"}}
	for _, f := range st.Farms {
		farms = append(farms, []interface{}{f.ID, f.Name, f.InitialStock})
	}

	accounts := [][]interface{}{{"ID", "Name", "Type", "Initial Balance"}}
	for _, a := range st.Accounts {
		accounts = append(accounts, []interface{}{a.ID, a.Name, string(a.Type), a.InitialBalance.String()})
	}

	sales := [][]interface{}{{"ID", "Date", "Customer ID", "Farm ID", "Vehicle", "Crates", "Chickens", "Weight", "Rate", "Total"}}
	for _, sl := range st.Sales {
		sales = append(sales, []interface{}{
			sl.ID, sl.Date, sl.CustomerID, sl.FarmID, sl.VehicleNumber,
			sl.Crates, sl.Chickens, sl.Weight.String(), sl.Rate.String(), sl.Total.String(),
		})
	}

	receivables := [][]interface{}{{"ID", "Date", "Customer ID", "Account ID", "Amount"}}
	for _, r := range st.Receivables {
		receivables = append(receivables, []interface{}{r.ID, r.Date, r.CustomerID, r.AccountID, r.Amount.String()})
	}

	vouchers := [][]interface{}{{"ID", "Date", "Description", "Debit", "Credit", "Amount", "Related ID", "Related Type"}}
	for _, v := range st.Vouchers {
		vouchers = append(vouchers, []interface{}{
			v.ID, v.Date, v.Description, v.DebitAccount, v.CreditAccount,
			v.Amount.String(), v.RelatedID, string(v.RelatedType),
		})
	}

	tabs := []struct {
		sheetRange string
		rows       [][]interface{}
	}{
		{customersRange, customers},
		{farmsRange, farms},
		{accountsRange, accounts},
		{salesRange, sales},
		{receivablesRange, receivables},
		{vouchersRange, vouchers},
	}

	for _, tab := range tabs {
		if err := m.repo.Overwrite(ctx, tab.sheetRange, tab.rows); err != nil {
			return fmt.Errorf("mirror %s: %w", tab.sheetRange, err)
		}
	}

	// Run log is append-only so operators can see the mirror history.
	runRow := []interface{}{time.Now().UTC().Format(time.RFC3339), len(st.Sales), len(st.Receivables)}
	if err := m.repo.WriteRow(ctx, runsRange, runRow); err != nil {
		m.logger.Warn("failed to append mirror run log", zap.Error(err))
	}

	m.logger.Info("books mirrored to spreadsheet",
		zap.Int("customers", len(st.Customers)),
		zap.Int("sales", len(st.Sales)),
		zap.Int("vouchers", len(st.Vouchers)))
	return nil
}
