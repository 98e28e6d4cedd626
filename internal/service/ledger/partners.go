package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

// CustomerDraft carries caller-supplied customer fields.
type CustomerDraft struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// FarmDraft carries caller-supplied farm fields.
type FarmDraft struct {
	Name         string `json:"name" binding:"required"`
	InitialStock int    `json:"initialStock"`
}

// AccountDraft carries caller-supplied account fields.
type AccountDraft struct {
	Name           string             `json:"name" binding:"required"`
	Type           models.AccountType `json:"type" binding:"required"`
	InitialBalance decimal.Decimal    `json:"initialBalance"`
}

func (d CustomerDraft) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	return nil
}

func (d FarmDraft) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if d.InitialStock < 0 {
		return fmt.Errorf("%w: initial stock must not be negative", ErrValidation)
	}
	return nil
}

func (d AccountDraft) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("%w: unknown account type %q", ErrValidation, d.Type)
	}
	return nil
}

// AddCustomer registers a new customer.
func (s *Service) AddCustomer(ctx context.Context, draft CustomerDraft) (models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := draft.validate(); err != nil {
		return models.Customer{}, err
	}

	c := models.Customer{
		ID:      s.state.NextCustomerID(),
		Name:    draft.Name,
		Phone:   draft.Phone,
		Address: draft.Address,
	}
	s.state.Customers = append(s.state.Customers, c)

	s.logger.Info("customer added", zap.Int("customer_id", c.ID), zap.String("name", c.Name))

	s.persist(ctx)
	return c, nil
}

// UpdateCustomer rewrites an existing customer record. Voucher descriptions
// derived from the old name are left as written; they are a journal, not a
// join.
func (s *Service) UpdateCustomer(ctx context.Context, id int, draft CustomerDraft) (models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := draft.validate(); err != nil {
		return models.Customer{}, err
	}

	for i, c := range s.state.Customers {
		if c.ID == id {
			updated := models.Customer{ID: id, Name: draft.Name, Phone: draft.Phone, Address: draft.Address}
			s.state.Customers[i] = updated
			s.persist(ctx)
			return updated, nil
		}
	}
	return models.Customer{}, fmt.Errorf("customer %d: %w", id, ErrNotFound)
}

// DeleteCustomer removes the customer and cascades: the customer's sales and
// receipts go, and so does every voucher derived from them. Vouchers of other
// customers are untouched.
func (s *Service) DeleteCustomer(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Customer(id); !ok {
		return fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}

	keptCustomers := s.state.Customers[:0]
	for _, c := range s.state.Customers {
		if c.ID != id {
			keptCustomers = append(keptCustomers, c)
		}
	}
	s.state.Customers = keptCustomers

	saleIDs := map[int]bool{}
	keptSales := s.state.Sales[:0]
	for _, sl := range s.state.Sales {
		if sl.CustomerID == id {
			saleIDs[sl.ID] = true
			continue
		}
		keptSales = append(keptSales, sl)
	}
	s.state.Sales = keptSales

	receivableIDs := map[int]bool{}
	keptReceivables := s.state.Receivables[:0]
	for _, r := range s.state.Receivables {
		if r.CustomerID == id {
			receivableIDs[r.ID] = true
			continue
		}
		keptReceivables = append(keptReceivables, r)
	}
	s.state.Receivables = keptReceivables

	dropVouchersFor(&s.state, models.RelatedSale, saleIDs)
	dropVouchersFor(&s.state, models.RelatedReceivable, receivableIDs)

	s.logger.Info("customer deleted",
		zap.Int("customer_id", id),
		zap.Int("sales_removed", len(saleIDs)),
		zap.Int("receipts_removed", len(receivableIDs)))

	s.persist(ctx)
	return nil
}

// AddFarm registers a new farm.
func (s *Service) AddFarm(ctx context.Context, draft FarmDraft) (models.Farm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := draft.validate(); err != nil {
		return models.Farm{}, err
	}

	f := models.Farm{
		ID:           s.state.NextFarmID(),
		Name:         draft.Name,
		InitialStock: draft.InitialStock,
	}
	s.state.Farms = append(s.state.Farms, f)

	s.logger.Info("farm added", zap.Int("farm_id", f.ID), zap.String("name", f.Name))

	s.persist(ctx)
	return f, nil
}

// UpdateFarm rewrites an existing farm record.
func (s *Service) UpdateFarm(ctx context.Context, id int, draft FarmDraft) (models.Farm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := draft.validate(); err != nil {
		return models.Farm{}, err
	}

	for i, f := range s.state.Farms {
		if f.ID == id {
			updated := models.Farm{ID: id, Name: draft.Name, InitialStock: draft.InitialStock}
			s.state.Farms[i] = updated
			s.persist(ctx)
			return updated, nil
		}
	}
	return models.Farm{}, fmt.Errorf("farm %d: %w", id, ErrNotFound)
}

// DeleteFarm removes the farm and cascades to its sales and their vouchers.
// Receipts are customer-level records and stay.
func (s *Service) DeleteFarm(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Farm(id); !ok {
		return fmt.Errorf("farm %d: %w", id, ErrNotFound)
	}

	keptFarms := s.state.Farms[:0]
	for _, f := range s.state.Farms {
		if f.ID != id {
			keptFarms = append(keptFarms, f)
		}
	}
	s.state.Farms = keptFarms

	saleIDs := map[int]bool{}
	keptSales := s.state.Sales[:0]
	for _, sl := range s.state.Sales {
		if sl.FarmID == id {
			saleIDs[sl.ID] = true
			continue
		}
		keptSales = append(keptSales, sl)
	}
	s.state.Sales = keptSales

	dropVouchersFor(&s.state, models.RelatedSale, saleIDs)

	s.logger.Info("farm deleted", zap.Int("farm_id", id), zap.Int("sales_removed", len(saleIDs)))

	s.persist(ctx)
	return nil
}

// AddAccount registers a new financial account.
func (s *Service) AddAccount(ctx context.Context, draft AccountDraft) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := draft.validate(); err != nil {
		return models.Account{}, err
	}

	a := models.Account{
		ID:             s.state.NextAccountID(),
		Name:           draft.Name,
		Type:           draft.Type,
		InitialBalance: draft.InitialBalance,
	}
	s.state.Accounts = append(s.state.Accounts, a)

	s.logger.Info("account added", zap.Int("account_id", a.ID), zap.String("name", a.Name))

	s.persist(ctx)
	return a, nil
}

// UpdateAccount rewrites an existing account record.
func (s *Service) UpdateAccount(ctx context.Context, id int, draft AccountDraft) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := draft.validate(); err != nil {
		return models.Account{}, err
	}

	for i, a := range s.state.Accounts {
		if a.ID == id {
			updated := models.Account{ID: id, Name: draft.Name, Type: draft.Type, InitialBalance: draft.InitialBalance}
			s.state.Accounts[i] = updated
			s.persist(ctx)
			return updated, nil
		}
	}
	return models.Account{}, fmt.Errorf("account %d: %w", id, ErrNotFound)
}

// DeleteAccount removes an account. Nothing cascades from accounts; existing
// receipts keep their accountId and fall back to the cash label when it no
// longer resolves.
func (s *Service) DeleteAccount(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.state.Accounts {
		if a.ID == id {
			s.state.Accounts = append(s.state.Accounts[:i], s.state.Accounts[i+1:]...)
			s.logger.Info("account deleted", zap.Int("account_id", id))
			s.persist(ctx)
			return nil
		}
	}
	return fmt.Errorf("account %d: %w", id, ErrNotFound)
}
