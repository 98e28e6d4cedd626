package reporting

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

// SalesSummary lists the sales of a period, newest first, with the period
// totals the dashboard cards show.
type SalesSummary struct {
	From   string        `json:"from"`
	To     string        `json:"to"`
	Sales  []models.Sale `json:"sales"`
	Totals PeriodTotals  `json:"totals"`
}

// SalesSummaryReport builds the sales summary for [from, to].
func (s *Service) SalesSummaryReport(from, to string) SalesSummary {
	st := s.books.Snapshot()

	sales := make([]models.Sale, 0)
	for _, sl := range st.Sales {
		if sl.Date >= from && sl.Date <= to {
			sales = append(sales, sl)
		}
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].Date > sales[j].Date
	})

	return SalesSummary{
		From:   from,
		To:     to,
		Sales:  sales,
		Totals: PeriodAggregate(st.Sales, from, to),
	}
}

// LedgerEntry is one debit/credit row in a customer ledger.
type LedgerEntry struct {
	ID          int             `json:"id"`
	Date        string          `json:"date"`
	Type        string          `json:"type"` // SALE or RECEIPT
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// CustomerLedger is the account-statement view of one customer: the balance
// carried into the period, the period's transactions with a running balance,
// and the balance carried out.
type CustomerLedger struct {
	Customer       models.Customer `json:"customer"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Entries        []LedgerEntry   `json:"entries"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// CustomerLedgerReport builds the ledger for one customer over [from, to].
func (s *Service) CustomerLedgerReport(customerID int, from, to string) (CustomerLedger, error) {
	st := s.books.Snapshot()

	customer, ok := st.Customer(customerID)
	if !ok {
		return CustomerLedger{}, ErrUnknownCustomer
	}

	opening := decimal.Zero
	entries := make([]LedgerEntry, 0)

	for _, sl := range st.Sales {
		if sl.CustomerID != customerID {
			continue
		}
		if sl.Date < from {
			opening = opening.Add(sl.Total)
			continue
		}
		if sl.Date > to {
			continue
		}
		name := "Farm"
		if f, ok := st.Farm(sl.FarmID); ok {
			name = f.Name
		}
		desc := fmt.Sprintf("Inv #%d - %s", sl.ID, name)
		if sl.VehicleNumber != "" {
			desc += fmt.Sprintf(" (%s)", sl.VehicleNumber)
		}
		entries = append(entries, LedgerEntry{
			ID:          sl.ID,
			Date:        sl.Date,
			Type:        "SALE",
			Description: desc,
			Debit:       sl.Total,
			Credit:      decimal.Zero,
		})
	}

	for _, r := range st.Receivables {
		if r.CustomerID != customerID {
			continue
		}
		if r.Date < from {
			opening = opening.Sub(r.Amount)
			continue
		}
		if r.Date > to {
			continue
		}
		entries = append(entries, LedgerEntry{
			ID:          r.ID,
			Date:        r.Date,
			Type:        "RECEIPT",
			Description: fmt.Sprintf("Receipt #%d", r.ID),
			Debit:       decimal.Zero,
			Credit:      r.Amount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})

	running := opening
	for i := range entries {
		running = running.Add(entries[i].Debit).Sub(entries[i].Credit)
		entries[i].Balance = running
	}

	return CustomerLedger{
		Customer:       customer,
		From:           from,
		To:             to,
		OpeningBalance: opening,
		Entries:        entries,
		ClosingBalance: running,
	}, nil
}

// FarmPerformanceRow summarizes one farm: what it moved in the period and
// what is left in the shed overall.
type FarmPerformanceRow struct {
	Farm           models.Farm     `json:"farm"`
	PeriodSales    int             `json:"periodSales"`
	PeriodChickens int             `json:"periodChickens"`
	PeriodWeight   decimal.Decimal `json:"periodWeight"`
	PeriodRevenue  decimal.Decimal `json:"periodRevenue"`
	RemainingStock int             `json:"remainingStock"`
}

// FarmPerformanceReport builds per-farm rows for [from, to]. A zero farmID
// covers all farms.
func (s *Service) FarmPerformanceReport(farmID int, from, to string) []FarmPerformanceRow {
	st := s.books.Snapshot()

	rows := make([]FarmPerformanceRow, 0, len(st.Farms))
	for _, farm := range st.Farms {
		if farmID != 0 && farm.ID != farmID {
			continue
		}
		row := FarmPerformanceRow{
			Farm:           farm,
			PeriodWeight:   decimal.Zero,
			PeriodRevenue:  decimal.Zero,
			RemainingStock: FarmRemainingStock(st, farm.ID),
		}
		for _, sl := range st.Sales {
			if sl.FarmID != farm.ID || sl.Date < from || sl.Date > to {
				continue
			}
			row.PeriodSales++
			row.PeriodChickens += sl.Chickens
			row.PeriodWeight = row.PeriodWeight.Add(sl.Weight)
			row.PeriodRevenue = row.PeriodRevenue.Add(sl.Total)
		}
		rows = append(rows, row)
	}
	return rows
}

// MonthlyPoint is one month in the sales-versus-received series.
type MonthlyPoint struct {
	Month    string          `json:"month"` // YYYY-MM
	Sales    decimal.Decimal `json:"sales"`
	Received decimal.Decimal `json:"received"`
}

// StockSlice is one farm's share of the remaining birds.
type StockSlice struct {
	Name  string `json:"name"`
	Birds int    `json:"birds"`
}

// DashboardSummary carries the headline numbers and chart series of the
// landing view.
type DashboardSummary struct {
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalReceived  decimal.Decimal `json:"totalReceived"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	Customers      int             `json:"customers"`
	Farms          int             `json:"farms"`
	BirdsInitial   int             `json:"birdsInitial"`
	BirdsSold      int             `json:"birdsSold"`
	BirdsLeft      int             `json:"birdsLeft"`
	Monthly        []MonthlyPoint  `json:"monthly"`
	RemainingStock []StockSlice    `json:"remainingStock"`
}

// DashboardReport computes the landing-view numbers over the whole books.
func (s *Service) DashboardReport() DashboardSummary {
	st := s.books.Snapshot()

	summary := DashboardSummary{
		TotalSales:    decimal.Zero,
		TotalReceived: decimal.Zero,
		Customers:     len(st.Customers),
		Farms:         len(st.Farms),
	}

	monthly := map[string]*MonthlyPoint{}
	point := func(date string) *MonthlyPoint {
		if len(date) < 7 {
			return nil
		}
		month := date[:7]
		p, ok := monthly[month]
		if !ok {
			p = &MonthlyPoint{Month: month, Sales: decimal.Zero, Received: decimal.Zero}
			monthly[month] = p
		}
		return p
	}

	for _, sl := range st.Sales {
		summary.TotalSales = summary.TotalSales.Add(sl.Total)
		summary.BirdsSold += sl.Chickens
		if p := point(sl.Date); p != nil {
			p.Sales = p.Sales.Add(sl.Total)
		}
	}
	for _, r := range st.Receivables {
		summary.TotalReceived = summary.TotalReceived.Add(r.Amount)
		if p := point(r.Date); p != nil {
			p.Received = p.Received.Add(r.Amount)
		}
	}
	for _, f := range st.Farms {
		summary.BirdsInitial += f.InitialStock
		if left := FarmRemainingStock(st, f.ID); left > 0 {
			summary.RemainingStock = append(summary.RemainingStock, StockSlice{Name: f.Name, Birds: left})
		}
	}

	summary.Outstanding = summary.TotalSales.Sub(summary.TotalReceived)
	summary.BirdsLeft = summary.BirdsInitial - summary.BirdsSold

	summary.Monthly = make([]MonthlyPoint, 0, len(monthly))
	for _, p := range monthly {
		summary.Monthly = append(summary.Monthly, *p)
	}
	sort.Slice(summary.Monthly, func(i, j int) bool {
		return summary.Monthly[i].Month < summary.Monthly[j].Month
	})
	if summary.RemainingStock == nil {
		summary.RemainingStock = []StockSlice{}
	}

	return summary
}

// AccountStatementRow is one account with its period receipts and its
// current balance.
type AccountStatementRow struct {
	Account        models.Account  `json:"account"`
	PeriodReceipts decimal.Decimal `json:"periodReceipts"`
	Balance        decimal.Decimal `json:"balance"`
}

// AccountStatementReport lists every account with the receipts it took in
// during [from, to] and its all-time balance.
func (s *Service) AccountStatementReport(from, to string) []AccountStatementRow {
	st := s.books.Snapshot()

	rows := make([]AccountStatementRow, 0, len(st.Accounts))
	for _, account := range st.Accounts {
		row := AccountStatementRow{
			Account:        account,
			PeriodReceipts: decimal.Zero,
			Balance:        AccountBalance(st, account.ID),
		}
		for _, r := range st.Receivables {
			if r.AccountID == account.ID && r.Date >= from && r.Date <= to {
				row.PeriodReceipts = row.PeriodReceipts.Add(r.Amount)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
