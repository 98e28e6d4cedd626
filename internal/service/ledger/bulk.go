package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

// Import replaces the books with a parsed backup document. The document must
// carry customers and farms as arrays; anything else is rejected with
// models.ErrInvalidImport and the current state stays untouched.
func (s *Service) Import(ctx context.Context, data []byte) (models.State, error) {
	st, err := models.ParseImport(data)
	if err != nil {
		return models.State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = st
	s.logger.Info("state imported",
		zap.Int("customers", len(st.Customers)),
		zap.Int("farms", len(st.Farms)),
		zap.Int("sales", len(st.Sales)),
		zap.Int("receivables", len(st.Receivables)),
		zap.Int("vouchers", len(st.Vouchers)))

	s.persist(ctx)
	return s.state.Clone(), nil
}

// Reset wipes the books back to the default state with the two seed accounts.
// Callers are expected to have collected an explicit confirmation first.
func (s *Service) Reset(ctx context.Context) models.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = models.DefaultState()
	s.logger.Warn("state reset to defaults")

	s.persist(ctx)
	return s.state.Clone()
}
