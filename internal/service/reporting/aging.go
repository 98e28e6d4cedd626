package reporting

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

// agingTolerance filters out customers whose computed due is noise rather
// than debt.
var agingTolerance = decimal.New(1, -2) // 0.01

// AgingBuckets classifies outstanding debt by days since the invoice date.
// Upper edges are inclusive.
type AgingBuckets struct {
	Days0to15  decimal.Decimal `json:"days0_15"`
	Days16to30 decimal.Decimal `json:"days16_30"`
	Days31to60 decimal.Decimal `json:"days31_60"`
	Days60Plus decimal.Decimal `json:"days60plus"`
}

// Total is the sum of all four buckets.
func (b AgingBuckets) Total() decimal.Decimal {
	return b.Days0to15.Add(b.Days16to30).Add(b.Days31to60).Add(b.Days60Plus)
}

// AgingRow is one indebted customer in the receivables aging report.
type AgingRow struct {
	Customer    models.Customer    `json:"customer"`
	TotalDue    decimal.Decimal    `json:"totalDue"`
	Buckets     AgingBuckets       `json:"buckets"`
	LastPayment *models.Receivable `json:"lastPayment,omitempty"`
}

// AgeReceivables builds the receivables aging report as of the given date
// using FIFO allocation: each customer's accumulated payments settle their
// oldest invoices first, and whatever remains open is bucketed by age. The
// computation is pure; identical inputs always produce identical rows.
func AgeReceivables(st models.State, asOf string) []AgingRow {
	asOfDay, asOfErr := time.Parse(models.DateLayout, asOf)

	rows := make([]AgingRow, 0, len(st.Customers))
	for _, customer := range st.Customers {
		sales := make([]models.Sale, 0)
		for _, sl := range st.Sales {
			if sl.CustomerID == customer.ID {
				sales = append(sales, sl)
			}
		}
		// Oldest first; insertion order breaks date ties.
		sort.SliceStable(sales, func(i, j int) bool {
			return sales[i].Date < sales[j].Date
		})

		paymentPool := decimal.Zero
		var lastPayment *models.Receivable
		for _, r := range st.Receivables {
			if r.CustomerID != customer.ID {
				continue
			}
			paymentPool = paymentPool.Add(r.Amount)
			if lastPayment == nil || r.Date > lastPayment.Date {
				rc := r
				lastPayment = &rc
			}
		}

		var buckets AgingBuckets
		buckets.Days0to15 = decimal.Zero
		buckets.Days16to30 = decimal.Zero
		buckets.Days31to60 = decimal.Zero
		buckets.Days60Plus = decimal.Zero

		for _, sl := range sales {
			if paymentPool.GreaterThanOrEqual(sl.Total) {
				// Fully covered by the pool.
				paymentPool = paymentPool.Sub(sl.Total)
				continue
			}
			remainingDue := sl.Total.Sub(paymentPool)
			paymentPool = decimal.Zero

			days := ageInDays(asOfDay, asOfErr, sl.Date)
			switch {
			case days <= 15:
				buckets.Days0to15 = buckets.Days0to15.Add(remainingDue)
			case days <= 30:
				buckets.Days16to30 = buckets.Days16to30.Add(remainingDue)
			case days <= 60:
				buckets.Days31to60 = buckets.Days31to60.Add(remainingDue)
			default:
				buckets.Days60Plus = buckets.Days60Plus.Add(remainingDue)
			}
		}

		totalDue := buckets.Total()
		if totalDue.LessThanOrEqual(agingTolerance) {
			continue
		}
		rows = append(rows, AgingRow{
			Customer:    customer,
			TotalDue:    totalDue,
			Buckets:     buckets,
			LastPayment: lastPayment,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalDue.GreaterThan(rows[j].TotalDue)
	})
	return rows
}

// ageInDays is the ceiling of the absolute day distance between the as-of
// date and the invoice date. An unparseable date lands in the oldest bucket
// rather than failing the whole report.
func ageInDays(asOf time.Time, asOfErr error, saleDate string) int {
	day, err := time.Parse(models.DateLayout, saleDate)
	if err != nil || asOfErr != nil {
		return math.MaxInt32
	}
	hours := asOf.Sub(day).Hours()
	return int(math.Ceil(math.Abs(hours) / 24))
}

// AgingReport builds the aging rows for the live books. An empty asOf
// defaults to the current date.
func (s *Service) AgingReport(asOf string) []AgingRow {
	if asOf == "" {
		asOf = s.today()
	}
	return AgeReceivables(s.books.Snapshot(), asOf)
}
