package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

// SaleDraft carries the caller-supplied sale fields. The total is always
// derived from weight and rate; drafts cannot set it.
type SaleDraft struct {
	Date          string          `json:"date" binding:"required"`
	CustomerID    int             `json:"customerId" binding:"required"`
	FarmID        int             `json:"farmId" binding:"required"`
	VehicleNumber string          `json:"vehicleNumber"`
	Crates        int             `json:"crates"`
	Chickens      int             `json:"chickens" binding:"required"`
	Weight        decimal.Decimal `json:"weight" binding:"required"`
	Rate          decimal.Decimal `json:"rate" binding:"required"`
}

// ReceivableDraft carries the caller-supplied receipt fields. AccountID zero
// means unspecified.
type ReceivableDraft struct {
	Date       string          `json:"date" binding:"required"`
	CustomerID int             `json:"customerId" binding:"required"`
	AccountID  int             `json:"accountId"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

func (d SaleDraft) validate(st models.State) error {
	if !models.ValidDate(d.Date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if d.Chickens <= 0 {
		return fmt.Errorf("%w: chickens must be positive", ErrValidation)
	}
	if d.Crates < 0 {
		return fmt.Errorf("%w: crates must not be negative", ErrValidation)
	}
	if !d.Weight.IsPositive() {
		return fmt.Errorf("%w: weight must be positive", ErrValidation)
	}
	if !d.Rate.IsPositive() {
		return fmt.Errorf("%w: rate must be positive", ErrValidation)
	}
	if _, ok := st.Customer(d.CustomerID); !ok {
		return fmt.Errorf("customer %d: %w", d.CustomerID, ErrNotFound)
	}
	if _, ok := st.Farm(d.FarmID); !ok {
		return fmt.Errorf("farm %d: %w", d.FarmID, ErrNotFound)
	}
	return nil
}

func (d ReceivableDraft) validate(st models.State) error {
	if !models.ValidDate(d.Date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if !d.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if _, ok := st.Customer(d.CustomerID); !ok {
		return fmt.Errorf("customer %d: %w", d.CustomerID, ErrNotFound)
	}
	if d.AccountID != 0 {
		if _, ok := st.Account(d.AccountID); !ok {
			return fmt.Errorf("account %d: %w", d.AccountID, ErrNotFound)
		}
	}
	return nil
}

// RecordSale books a new sale and its paired journal voucher in one step.
func (s *Service) RecordSale(ctx context.Context, draft SaleDraft) (models.Sale, models.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := draft.validate(s.state); err != nil {
		return models.Sale{}, models.Voucher{}, err
	}

	sale := models.Sale{
		ID:            s.state.NextSaleID(),
		Date:          draft.Date,
		CustomerID:    draft.CustomerID,
		FarmID:        draft.FarmID,
		VehicleNumber: draft.VehicleNumber,
		Crates:        draft.Crates,
		Chickens:      draft.Chickens,
		Weight:        draft.Weight,
		Rate:          draft.Rate,
		Total:         draft.Weight.Mul(draft.Rate),
	}

	s.state.Sales = append(s.state.Sales, sale)
	voucher := syncVoucher(&s.state, saleVoucherBody(s.state, sale))

	s.logger.Info("sale recorded",
		zap.Int("sale_id", sale.ID),
		zap.Int("customer_id", sale.CustomerID),
		zap.String("total", sale.Total.String()))

	s.persist(ctx)
	return sale, voucher, nil
}

// UpdateSale rewrites an existing sale and brings its paired voucher back in
// line. A missing voucher is re-created rather than silently skipped, so the
// one-voucher-per-sale invariant holds again after the update.
func (s *Service) UpdateSale(ctx context.Context, id int, draft SaleDraft) (models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, sl := range s.state.Sales {
		if sl.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Sale{}, fmt.Errorf("sale %d: %w", id, ErrNotFound)
	}
	if err := draft.validate(s.state); err != nil {
		return models.Sale{}, err
	}

	sale := models.Sale{
		ID:            id,
		Date:          draft.Date,
		CustomerID:    draft.CustomerID,
		FarmID:        draft.FarmID,
		VehicleNumber: draft.VehicleNumber,
		Crates:        draft.Crates,
		Chickens:      draft.Chickens,
		Weight:        draft.Weight,
		Rate:          draft.Rate,
		Total:         draft.Weight.Mul(draft.Rate),
	}

	s.state.Sales[idx] = sale
	syncVoucher(&s.state, saleVoucherBody(s.state, sale))

	s.logger.Info("sale updated", zap.Int("sale_id", sale.ID))

	s.persist(ctx)
	return sale, nil
}

// DeleteSale removes the sale together with its paired voucher.
func (s *Service) DeleteSale(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Sale(id); !ok {
		return fmt.Errorf("sale %d: %w", id, ErrNotFound)
	}

	kept := s.state.Sales[:0]
	for _, sl := range s.state.Sales {
		if sl.ID != id {
			kept = append(kept, sl)
		}
	}
	s.state.Sales = kept
	dropVouchersFor(&s.state, models.RelatedSale, map[int]bool{id: true})

	s.logger.Info("sale deleted", zap.Int("sale_id", id))

	s.persist(ctx)
	return nil
}

// RecordReceivable books a cash receipt and its paired journal voucher.
func (s *Service) RecordReceivable(ctx context.Context, draft ReceivableDraft) (models.Receivable, models.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := draft.validate(s.state); err != nil {
		return models.Receivable{}, models.Voucher{}, err
	}

	rec := models.Receivable{
		ID:         s.state.NextReceivableID(),
		Date:       draft.Date,
		CustomerID: draft.CustomerID,
		AccountID:  draft.AccountID,
		Amount:     draft.Amount,
	}

	s.state.Receivables = append(s.state.Receivables, rec)
	voucher := syncVoucher(&s.state, receivableVoucherBody(s.state, rec))

	s.logger.Info("receipt recorded",
		zap.Int("receivable_id", rec.ID),
		zap.Int("customer_id", rec.CustomerID),
		zap.String("amount", rec.Amount.String()))

	s.persist(ctx)
	return rec, voucher, nil
}

// UpdateReceivable rewrites an existing receipt and re-syncs its voucher.
func (s *Service) UpdateReceivable(ctx context.Context, id int, draft ReceivableDraft) (models.Receivable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.state.Receivables {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Receivable{}, fmt.Errorf("receivable %d: %w", id, ErrNotFound)
	}
	if err := draft.validate(s.state); err != nil {
		return models.Receivable{}, err
	}

	rec := models.Receivable{
		ID:         id,
		Date:       draft.Date,
		CustomerID: draft.CustomerID,
		AccountID:  draft.AccountID,
		Amount:     draft.Amount,
	}

	s.state.Receivables[idx] = rec
	syncVoucher(&s.state, receivableVoucherBody(s.state, rec))

	s.logger.Info("receipt updated", zap.Int("receivable_id", rec.ID))

	s.persist(ctx)
	return rec, nil
}

// DeleteReceivable removes the receipt together with its paired voucher.
func (s *Service) DeleteReceivable(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Receivable(id); !ok {
		return fmt.Errorf("receivable %d: %w", id, ErrNotFound)
	}

	kept := s.state.Receivables[:0]
	for _, r := range s.state.Receivables {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.state.Receivables = kept
	dropVouchersFor(&s.state, models.RelatedReceivable, map[int]bool{id: true})

	s.logger.Info("receipt deleted", zap.Int("receivable_id", id))

	s.persist(ctx)
	return nil
}
