package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/domain/models"
	"github.com/alrehman/poultrybooks/internal/service/ledger"
	"github.com/alrehman/poultrybooks/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const dateFormat = models.DateLayout

// Books defines the write-side operations the dispatcher needs.
type Books interface {
	RecordSale(ctx context.Context, draft ledger.SaleDraft) (models.Sale, models.Voucher, error)
	RecordReceivable(ctx context.Context, draft ledger.ReceivableDraft) (models.Receivable, models.Voucher, error)
	Snapshot() models.State
}

// Reports defines the read-side functions required by the dispatcher.
type Reports interface {
	CustomerBalance(customerID int) (decimal.Decimal, error)
	AgingReport(asOf string) []reporting.AgingRow
	DashboardReport() reporting.DashboardSummary
}

// Dispatcher executes parsed commands against the books.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	books   Books
	reports Reports
	logger  *zap.Logger
	now     func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(books Books, reports Reports, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		books:   books,
		reports: reports,
		logger:  logger,
		now:     time.Now,
	}
}

// HandleCommand executes the command and renders a reply for the sender.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command",
		zap.String("command", string(cmd.Type)),
		zap.String("sender", sender),
		zap.Any("args", cmd.Args))

	switch cmd.Type {
	case models.CommandSale:
		return s.handleSale(ctx, cmd)
	case models.CommandReceipt:
		return s.handleReceipt(ctx, cmd)
	case models.CommandBalance:
		return s.handleBalance(cmd)
	case models.CommandStock:
		return s.handleStock(), nil
	case models.CommandDues:
		return s.handleDues(), nil
	case models.CommandSummary:
		return s.handleSummary(), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// handleSale books a sale from "/sale <customerId> <farmId> <chickens>
// <weight> <rate> [vehicle]".
func (s *Service) handleSale(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) < 5 {
		return "", ErrInvalidArguments
	}

	customerID, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		return "", ErrInvalidArguments
	}
	farmID, err := strconv.Atoi(cmd.Args[1])
	if err != nil {
		return "", ErrInvalidArguments
	}
	chickens, err := strconv.Atoi(cmd.Args[2])
	if err != nil {
		return "", ErrInvalidArguments
	}
	weight, err := decimal.NewFromString(cmd.Args[3])
	if err != nil {
		return "", ErrInvalidArguments
	}
	rate, err := decimal.NewFromString(cmd.Args[4])
	if err != nil {
		return "", ErrInvalidArguments
	}

	vehicle := ""
	if len(cmd.Args) > 5 {
		vehicle = strings.ToUpper(strings.Join(cmd.Args[5:], " "))
	}

	sale, _, err := s.books.RecordSale(ctx, ledger.SaleDraft{
		Date:          s.now().UTC().Format(dateFormat),
		CustomerID:    customerID,
		FarmID:        farmID,
		VehicleNumber: vehicle,
		Chickens:      chickens,
		Weight:        weight,
		Rate:          rate,
	})
	if err != nil {
		return "", err
	}

	st := s.books.Snapshot()
	name := "customer"
	if c, ok := st.Customer(sale.CustomerID); ok {
		name = c.Name
	}
	return fmt.Sprintf("Sale #%d booked for %s: %d birds, %s kg @ %s = %s.",
		sale.ID, name, sale.Chickens, sale.Weight.String(), sale.Rate.String(), sale.Total.String()), nil
}

// handleReceipt books a receipt from "/receipt <customerId> <amount>
// [accountId]".
func (s *Service) handleReceipt(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) < 2 {
		return "", ErrInvalidArguments
	}

	customerID, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		return "", ErrInvalidArguments
	}
	amount, err := decimal.NewFromString(cmd.Args[1])
	if err != nil {
		return "", ErrInvalidArguments
	}

	accountID := 0
	if len(cmd.Args) > 2 {
		accountID, err = strconv.Atoi(cmd.Args[2])
		if err != nil {
			return "", ErrInvalidArguments
		}
	}

	rec, voucher, err := s.books.RecordReceivable(ctx, ledger.ReceivableDraft{
		Date:       s.now().UTC().Format(dateFormat),
		CustomerID: customerID,
		AccountID:  accountID,
		Amount:     amount,
	})
	if err != nil {
		return "", err
	}

	st := s.books.Snapshot()
	name := "customer"
	if c, ok := st.Customer(rec.CustomerID); ok {
		name = c.Name
	}
	balance, _ := s.reports.CustomerBalance(rec.CustomerID)
	return fmt.Sprintf("Receipt #%d recorded: %s from %s into %s. Balance now %s.",
		rec.ID, rec.Amount.String(), name, voucher.DebitAccount, balance.String()), nil
}

// handleBalance answers "/balance <customerId>".
func (s *Service) handleBalance(cmd models.Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", ErrInvalidArguments
	}
	customerID, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		return "", ErrInvalidArguments
	}

	balance, err := s.reports.CustomerBalance(customerID)
	if err != nil {
		return "", err
	}

	st := s.books.Snapshot()
	name := fmt.Sprintf("customer %d", customerID)
	if c, ok := st.Customer(customerID); ok {
		name = c.Name
	}
	if balance.IsPositive() {
		return fmt.Sprintf("%s owes %s.", name, balance.String()), nil
	}
	return fmt.Sprintf("%s is settled (balance %s).", name, balance.String()), nil
}

// handleStock lists remaining birds per farm.
func (s *Service) handleStock() string {
	st := s.books.Snapshot()
	if len(st.Farms) == 0 {
		return "No farms on the books yet."
	}

	var b strings.Builder
	b.WriteString("Remaining stock:")
	for _, f := range st.Farms {
		left := reporting.FarmRemainingStock(st, f.ID)
		fmt.Fprintf(&b, "\n%s: %d birds", f.Name, left)
		if left <= 0 {
			b.WriteString(" (sold out)")
		}
	}
	return b.String()
}

// handleDues renders the top of the receivables aging report.
func (s *Service) handleDues() string {
	rows := s.reports.AgingReport("")
	if len(rows) == 0 {
		return "No outstanding dues. All customers settled."
	}

	var b strings.Builder
	b.WriteString("Outstanding dues (oldest-first allocation):")
	for i, row := range rows {
		if i == 10 {
			fmt.Fprintf(&b, "\n...and %d more", len(rows)-i)
			break
		}
		fmt.Fprintf(&b, "\n%s: %s (60+ days: %s)",
			row.Customer.Name, row.TotalDue.String(), row.Buckets.Days60Plus.String())
	}
	return b.String()
}

// handleSummary renders the dashboard headline numbers.
func (s *Service) handleSummary() string {
	d := s.reports.DashboardReport()
	return fmt.Sprintf(
		"Books summary\nSales: %s\nReceived: %s\nOutstanding: %s\nCustomers: %d, Farms: %d\nBirds: %d sold of %d, %d left.",
		d.TotalSales.String(), d.TotalReceived.String(), d.Outstanding.String(),
		d.Customers, d.Farms, d.BirdsSold, d.BirdsInitial, d.BirdsLeft)
}
