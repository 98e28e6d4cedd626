package reporting

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

// ErrUnknownCustomer indicates a report request for a customer that does not
// exist in the books.
var ErrUnknownCustomer = errors.New("unknown customer")

// StateProvider hands out consistent snapshots of the books. The ledger
// service satisfies this; tests plug in a fixture.
type StateProvider interface {
	Snapshot() models.State
}

// Service exposes the read side of the books: balances, period reports and
// the receivables aging view. Every method works on one snapshot, so a report
// never mixes data from two states.
type Service struct {
	books  StateProvider
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(books StateProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{books: books, logger: logger, now: time.Now}
}

func (s *Service) today() string {
	return s.now().UTC().Format(models.DateLayout)
}
