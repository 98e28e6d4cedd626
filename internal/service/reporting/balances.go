package reporting

import (
	"github.com/shopspring/decimal"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

// CustomerBalance is what the customer still owes: lifetime sales minus
// lifetime receipts. Positive means outstanding debt, non-positive means
// settled or overpaid.
func CustomerBalance(st models.State, customerID int) decimal.Decimal {
	balance := decimal.Zero
	for _, sl := range st.Sales {
		if sl.CustomerID == customerID {
			balance = balance.Add(sl.Total)
		}
	}
	for _, r := range st.Receivables {
		if r.CustomerID == customerID {
			balance = balance.Sub(r.Amount)
		}
	}
	return balance
}

// AccountBalance is the account's initial balance plus every receipt
// deposited into it. Outflows are not modeled in the books, so this only ever
// grows from the initial balance.
func AccountBalance(st models.State, accountID int) decimal.Decimal {
	account, ok := st.Account(accountID)
	if !ok {
		return decimal.Zero
	}
	balance := account.InitialBalance
	for _, r := range st.Receivables {
		if r.AccountID == accountID {
			balance = balance.Add(r.Amount)
		}
	}
	return balance
}

// FarmRemainingStock is the farm's initial bird count minus all birds sold
// from it. The result is not clamped; a negative value means the farm was
// oversold and callers surface that as a warning.
func FarmRemainingStock(st models.State, farmID int) int {
	farm, ok := st.Farm(farmID)
	if !ok {
		return 0
	}
	sold := 0
	for _, sl := range st.Sales {
		if sl.FarmID == farmID {
			sold += sl.Chickens
		}
	}
	return farm.InitialStock - sold
}

// PeriodTotals aggregates sale quantities over a date window.
type PeriodTotals struct {
	Count    int             `json:"count"`
	Chickens int             `json:"chickens"`
	Weight   decimal.Decimal `json:"weight"`
	Total    decimal.Decimal `json:"total"`
}

// PeriodAggregate sums the sales with from <= date <= to, boundaries
// inclusive. Dates compare lexicographically.
func PeriodAggregate(sales []models.Sale, from, to string) PeriodTotals {
	totals := PeriodTotals{Weight: decimal.Zero, Total: decimal.Zero}
	for _, sl := range sales {
		if sl.Date < from || sl.Date > to {
			continue
		}
		totals.Count++
		totals.Chickens += sl.Chickens
		totals.Weight = totals.Weight.Add(sl.Weight)
		totals.Total = totals.Total.Add(sl.Total)
	}
	return totals
}

// CustomerBalance reports the live balance for one customer.
func (s *Service) CustomerBalance(customerID int) (decimal.Decimal, error) {
	st := s.books.Snapshot()
	if _, ok := st.Customer(customerID); !ok {
		return decimal.Zero, ErrUnknownCustomer
	}
	return CustomerBalance(st, customerID), nil
}
