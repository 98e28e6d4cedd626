package ledger

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

// ErrNotFound indicates the referenced record does not exist in the books.
var ErrNotFound = errors.New("record not found")

// ErrValidation indicates a mutation request that fails field validation.
// No state change is applied when it is returned.
var ErrValidation = errors.New("validation failed")

// Store persists whole-state snapshots. Implementations must write the entire
// snapshot atomically so a reader never observes sales without their vouchers.
type Store interface {
	Save(ctx context.Context, st models.State) error
}

// Service owns the books and keeps the voucher collection a faithful derived
// view of sales and receivables. Every mutation runs to completion under the
// service lock, so callers always observe the state either before or after an
// operation, never in between.
type Service struct {
	mu     sync.Mutex
	state  models.State
	store  Store
	logger *zap.Logger
}

// NewService wires a ledger service around an initial state, typically the
// snapshot loaded from the persistence gateway at startup.
func NewService(initial models.State, store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	initial.Normalize()
	return &Service{state: initial, store: store, logger: logger}
}

// Snapshot returns a deep copy of the current books for read-side consumers.
func (s *Service) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// persist pushes the current snapshot through the store. A failed save is
// logged and the session degrades to in-memory state; the mutation that
// triggered it has already been applied and stays visible.
func (s *Service) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.state.Clone()); err != nil {
		s.logger.Error("state save failed, continuing in memory", zap.Error(err))
	}
}
