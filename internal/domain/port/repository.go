package port

import (
	"context"
	"time"

	"github.com/bibbank/loan-servicing/internal/domain/event"
	"github.com/bibbank/loan-servicing/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanRepository persists and retrieves serviced loans. Save must write the
// aggregate atomically: the loan row, the full schedule and the ledger commit
// or roll back together, guarded by the aggregate version.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, tenantID, id string) (model.Loan, error)
	FindByExternalTransactionID(ctx context.Context, tenantID, externalID string) (model.Loan, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Clock port
// ---------------------------------------------------------------------------

// Clock supplies the servicing business date. Chargebacks are booked on the
// business date they arrive, never back-dated to the disputed payment.
type Clock interface {
	Now() time.Time
	BusinessDate() time.Time
}
