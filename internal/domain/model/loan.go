package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-servicing/internal/domain/event"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
	"github.com/bibbank/loan-servicing/pkg/money"
)

// ---------------------------------------------------------------------------
// Loan aggregate root (Payment Allocation & Schedule Recomputation)
// ---------------------------------------------------------------------------

// Loan is an immutable aggregate. Mutations return a new copy whose derived
// state (schedule, breakdowns, summary, status) was rebuilt by a full replay
// of the transaction ledger. No component mutates the schedule outside of a
// replay pass.
type Loan struct {
	id       string
	tenantID string
	currency string

	// baseline carries the product-generated due figures the replay resets to.
	// Charge additions and waivers mutate baseline dues, then replay.
	baseline []Period
	rules    valueobject.RuleTable

	schedule    Schedule
	ledger      []Transaction
	overpayment decimal.Decimal
	chargedOff  bool
	summary     LoanSummary
	status      valueobject.LoanStatus

	version      int
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan creates a loan from its product-generated baseline schedule. The
// ledger starts empty; the first recorded transaction must be a disbursement.
func NewLoan(tenantID, currency string, baseline []Period, rules valueobject.RuleTable, now time.Time) (Loan, error) {
	if tenantID == "" {
		return Loan{}, errors.New("tenant ID is required")
	}
	if _, err := money.NewCurrency(currency); err != nil {
		return Loan{}, err
	}
	if len(baseline) == 0 {
		return Loan{}, errors.New("baseline schedule is required")
	}
	for i := 1; i < len(baseline); i++ {
		if baseline[i].DueDate.Before(baseline[i-1].DueDate) {
			return Loan{}, fmt.Errorf("baseline periods out of order at sequence %d", baseline[i].Sequence)
		}
	}

	loan := Loan{
		id:        uuid.New().String(),
		tenantID:  tenantID,
		currency:  currency,
		baseline:  clonePeriods(baseline),
		rules:     rules,
		schedule:  NewSchedule(baseline),
		status:    valueobject.LoanStatusActive,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
	loan.summary = LoanSummary{
		TotalOutstanding:     loan.schedule.TotalOutstanding(),
		PrincipalOutstanding: loan.schedule.OutstandingByCategory(valueobject.CategoryPrincipal),
	}

	loan.domainEvents = append(loan.domainEvents, event.NewLoanCreated(
		loan.id, tenantID, currency, len(baseline),
	))

	return loan, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, tenantID, currency string,
	baseline []Period,
	rules valueobject.RuleTable,
	schedule Schedule,
	ledger []Transaction,
	overpayment decimal.Decimal,
	chargedOff bool,
	summary LoanSummary,
	status valueobject.LoanStatus,
	version int,
	createdAt, updatedAt time.Time,
) Loan {
	return Loan{
		id:          id,
		tenantID:    tenantID,
		currency:    currency,
		baseline:    baseline,
		rules:       rules,
		schedule:    schedule,
		ledger:      ledger,
		overpayment: overpayment,
		chargedOff:  chargedOff,
		summary:     summary,
		status:      status,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// RecordTransaction appends a new monetary event and replays the full
// history. businessDate is the servicing business date; chargebacks are
// re-dated to it regardless of the requested date.
func (l Loan) RecordTransaction(
	rec Recomputer,
	txType valueobject.TransactionType,
	date time.Time,
	amount decimal.Decimal,
	externalID string,
	businessDate time.Time,
	now time.Time,
) (Loan, Transaction, error) {
	if txType.IsMarker() {
		if amount.IsNegative() {
			return l, Transaction{}, fmt.Errorf("%w: %s amount %s", ErrInvalidAmount, txType, amount)
		}
	} else if !amount.IsPositive() {
		return l, Transaction{}, fmt.Errorf("%w: %s amount %s", ErrInvalidAmount, txType, amount)
	}

	if txType == valueobject.TypeChargeback {
		// Chargebacks reinstate the obligation as of the current processing
		// date, not the original transaction's date.
		date = businessDate
	}

	if txType != valueobject.TypeDisbursement {
		first, ok := l.firstDisbursementDate()
		if !ok {
			return l, Transaction{}, fmt.Errorf("%w: loan has no disbursement", ErrInvalidTransactionDate)
		}
		if date.Before(first) {
			return l, Transaction{}, fmt.Errorf("%w: %s predates disbursement %s",
				ErrInvalidTransactionDate, date.Format(time.DateOnly), first.Format(time.DateOnly))
		}
	}

	if txType.Allocates() && l.status.IsClosed() && l.overpayment.IsZero() && amount.IsPositive() {
		return l, Transaction{}, fmt.Errorf("%w: loan obligations already met", ErrInvalidTransactionDate)
	}
	if txType == valueobject.TypeCreditBalanceRefund && amount.GreaterThan(l.overpayment) {
		return l, Transaction{}, fmt.Errorf("%w: credit balance refund %s exceeds overpayment %s",
			ErrInvalidAmount, amount, l.overpayment)
	}

	tx := Transaction{
		ID:         uuid.New().String(),
		Sequence:   l.nextSequence(),
		Date:       date,
		Type:       txType,
		Amount:     amount,
		ExternalID: externalID,
	}

	next := l
	next.ledger = append(cloneTransactions(l.ledger), tx)

	snap, err := rec.Recompute(next.baseline, next.ledger)
	if err != nil {
		return l, Transaction{}, fmt.Errorf("replay after %s: %w", txType, err)
	}
	next.applySnapshot(snap, now)

	var recorded Transaction
	for i := range snap.Ledger {
		if snap.Ledger[i].ID == tx.ID {
			recorded = snap.Ledger[i]
		}
	}

	next.domainEvents = append(copyEvents(l.domainEvents), event.NewTransactionRecorded(
		l.id, l.tenantID, tx.ID, txType.String(), amount, l.currency,
	))
	next.recordStatusEvents(l.status, snap)

	return next, recorded, nil
}

// ReverseTransaction flips the reversed flag on the original entry (never a
// new ledger row) and replays; the entry stays in the ledger for audit.
func (l Loan) ReverseTransaction(rec Recomputer, transactionID string, now time.Time) (Loan, error) {
	idx := l.indexOf(transactionID)
	if idx < 0 {
		return l, fmt.Errorf("%w: %s", ErrTransactionNotFound, transactionID)
	}
	if l.ledger[idx].Reversed {
		return l, fmt.Errorf("transaction %s is already reversed", transactionID)
	}

	next := l
	next.ledger = cloneTransactions(l.ledger)
	next.ledger[idx].Reversed = true

	snap, err := rec.Recompute(next.baseline, next.ledger)
	if err != nil {
		return l, fmt.Errorf("replay after reversal: %w", err)
	}
	next.applySnapshot(snap, now)

	next.domainEvents = append(copyEvents(l.domainEvents), event.NewTransactionReversed(
		l.id, l.tenantID, transactionID, l.ledger[idx].Type.String(), l.ledger[idx].Amount, l.currency,
	))
	next.recordStatusEvents(l.status, snap)

	return next, nil
}

// AdjustTransaction is modeled as reverse-then-recreate at the new amount
// (and optionally a new date), with a single replay over the final ledger.
func (l Loan) AdjustTransaction(
	rec Recomputer,
	transactionID string,
	newAmount decimal.Decimal,
	newDate *time.Time,
	now time.Time,
) (Loan, Transaction, error) {
	idx := l.indexOf(transactionID)
	if idx < 0 {
		return l, Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, transactionID)
	}
	original := l.ledger[idx]
	if original.Reversed {
		return l, Transaction{}, fmt.Errorf("transaction %s is already reversed", transactionID)
	}
	if !newAmount.IsPositive() {
		return l, Transaction{}, fmt.Errorf("%w: adjusted amount %s", ErrInvalidAmount, newAmount)
	}
	if newAmount.GreaterThan(original.Amount) {
		return l, Transaction{}, fmt.Errorf("%w: adjusted amount %s exceeds original %s",
			ErrInvalidAmount, newAmount, original.Amount)
	}

	date := original.Date
	if newDate != nil {
		date = *newDate
	}

	replacement := Transaction{
		ID:         uuid.New().String(),
		Sequence:   l.nextSequence(),
		Date:       date,
		Type:       original.Type,
		Amount:     newAmount,
		ExternalID: original.ExternalID,
	}

	next := l
	next.ledger = append(cloneTransactions(l.ledger), replacement)
	next.ledger[idx].Reversed = true

	snap, err := rec.Recompute(next.baseline, next.ledger)
	if err != nil {
		return l, Transaction{}, fmt.Errorf("replay after adjustment: %w", err)
	}
	next.applySnapshot(snap, now)

	var recorded Transaction
	for i := range snap.Ledger {
		if snap.Ledger[i].ID == replacement.ID {
			recorded = snap.Ledger[i]
		}
	}

	next.domainEvents = append(copyEvents(l.domainEvents),
		event.NewTransactionReversed(l.id, l.tenantID, transactionID, original.Type.String(), original.Amount, l.currency),
		event.NewTransactionRecorded(l.id, l.tenantID, replacement.ID, original.Type.String(), newAmount, l.currency),
	)
	next.recordStatusEvents(l.status, snap)

	return next, recorded, nil
}

// ApplyCharge adds a fee or penalty due amount (pre-computed by the charge/tax
// subsystem) to a period's baseline, then replays.
func (l Loan) ApplyCharge(rec Recomputer, periodSequence int, category valueobject.Category, amount decimal.Decimal, now time.Time) (Loan, error) {
	if !category.IsCharge() {
		return l, fmt.Errorf("charges only apply to fee or penalty, got %s", category)
	}
	if !amount.IsPositive() {
		return l, fmt.Errorf("%w: charge amount %s", ErrInvalidAmount, amount)
	}

	next := l
	next.baseline = clonePeriods(l.baseline)
	p := next.baselinePeriod(periodSequence)
	if p == nil {
		return l, fmt.Errorf("period %d not found", periodSequence)
	}
	p.Due.Add(category, amount)

	snap, err := rec.Recompute(next.baseline, next.ledger)
	if err != nil {
		return l, fmt.Errorf("replay after charge: %w", err)
	}
	next.applySnapshot(snap, now)

	next.domainEvents = append(copyEvents(l.domainEvents), event.NewChargeApplied(
		l.id, l.tenantID, periodSequence, category.String(), amount, l.currency,
	))
	next.recordStatusEvents(l.status, snap)

	return next, nil
}

// WaiveCharge removes part or all of a fee or penalty due amount from a
// period's baseline, then replays.
func (l Loan) WaiveCharge(rec Recomputer, periodSequence int, category valueobject.Category, amount decimal.Decimal, now time.Time) (Loan, error) {
	if !category.IsCharge() {
		return l, fmt.Errorf("charges only apply to fee or penalty, got %s", category)
	}
	if !amount.IsPositive() {
		return l, fmt.Errorf("%w: waiver amount %s", ErrInvalidAmount, amount)
	}

	next := l
	next.baseline = clonePeriods(l.baseline)
	p := next.baselinePeriod(periodSequence)
	if p == nil {
		return l, fmt.Errorf("period %d not found", periodSequence)
	}
	if amount.GreaterThan(p.Due.Get(category)) {
		return l, fmt.Errorf("%w: waiver %s exceeds %s due %s",
			ErrInvalidAmount, amount, category, p.Due.Get(category))
	}
	p.Due.Add(category, amount.Neg())

	snap, err := rec.Recompute(next.baseline, next.ledger)
	if err != nil {
		return l, fmt.Errorf("replay after waiver: %w", err)
	}
	next.applySnapshot(snap, now)

	next.domainEvents = append(copyEvents(l.domainEvents), event.NewChargeWaived(
		l.id, l.tenantID, periodSequence, category.String(), amount, l.currency,
	))
	next.recordStatusEvents(l.status, snap)

	return next, nil
}

// ChargeOff records the zero-amount charge-off marker. Allocation order is
// unchanged afterwards; only income posting is redirected.
func (l Loan) ChargeOff(rec Recomputer, date time.Time, now time.Time) (Loan, error) {
	if l.chargedOff {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next, _, err := l.RecordTransaction(rec, valueobject.TypeChargeOff, date, decimal.Zero, "", date, now)
	if err != nil {
		return l, err
	}
	next.domainEvents = append(next.domainEvents, event.NewLoanChargedOff(l.id, l.tenantID))
	return next, nil
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

func (l *Loan) applySnapshot(snap Snapshot, now time.Time) {
	l.schedule = snap.Schedule
	l.ledger = snap.Ledger
	l.overpayment = snap.Overpayment
	l.chargedOff = snap.ChargedOff
	l.summary = snap.Summary
	l.status = snap.Status
	l.updatedAt = now
}

func (l *Loan) recordStatusEvents(prev valueobject.LoanStatus, snap Snapshot) {
	if snap.Reamortized {
		l.domainEvents = append(l.domainEvents, event.NewScheduleReamortized(l.id, l.tenantID))
	}
	if snap.Status.Equal(prev) {
		return
	}
	switch snap.Status {
	case valueobject.LoanStatusOverpaid:
		l.domainEvents = append(l.domainEvents, event.NewLoanOverpaid(l.id, l.tenantID, snap.Overpayment, l.currency))
	case valueobject.LoanStatusClosed:
		l.domainEvents = append(l.domainEvents, event.NewLoanClosed(l.id, l.tenantID))
	}
}

func (l *Loan) firstDisbursementDate() (time.Time, bool) {
	var first time.Time
	found := false
	for i := range l.ledger {
		tx := &l.ledger[i]
		if tx.Type != valueobject.TypeDisbursement || tx.Reversed {
			continue
		}
		if !found || tx.Date.Before(first) {
			first = tx.Date
			found = true
		}
	}
	return first, found
}

func (l *Loan) nextSequence() int {
	next := 0
	for i := range l.ledger {
		if l.ledger[i].Sequence >= next {
			next = l.ledger[i].Sequence + 1
		}
	}
	return next
}

func (l *Loan) indexOf(transactionID string) int {
	for i := range l.ledger {
		if l.ledger[i].ID == transactionID {
			return i
		}
	}
	return -1
}

func (l *Loan) baselinePeriod(sequence int) *Period {
	for i := range l.baseline {
		if l.baseline[i].Sequence == sequence {
			return &l.baseline[i]
		}
	}
	return nil
}

func clonePeriods(in []Period) []Period {
	out := make([]Period, len(in))
	for i, p := range in {
		out[i] = p.clone()
	}
	return out
}

func cloneTransactions(in []Transaction) []Transaction {
	out := make([]Transaction, len(in))
	copy(out, in)
	return out
}

func copyEvents(in []event.DomainEvent) []event.DomainEvent {
	if in == nil {
		return nil
	}
	out := make([]event.DomainEvent, len(in))
	copy(out, in)
	return out
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                        { return l.id }
func (l Loan) TenantID() string                  { return l.tenantID }
func (l Loan) Currency() string                  { return l.currency }
func (l Loan) Rules() valueobject.RuleTable      { return l.rules }
func (l Loan) Overpayment() decimal.Decimal      { return l.overpayment }
func (l Loan) ChargedOff() bool                  { return l.chargedOff }
func (l Loan) Summary() LoanSummary              { return l.summary }
func (l Loan) Status() valueobject.LoanStatus    { return l.status }
func (l Loan) Version() int                      { return l.version }
func (l Loan) CreatedAt() time.Time              { return l.createdAt }
func (l Loan) UpdatedAt() time.Time              { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent { return l.domainEvents }

// Baseline returns a defensive copy of the baseline periods.
func (l Loan) Baseline() []Period { return clonePeriods(l.baseline) }

// Schedule returns a defensive copy of the current period schedule.
func (l Loan) Schedule() Schedule { return l.schedule.Clone() }

// Ledger returns a defensive copy of the transaction history.
func (l Loan) Ledger() []Transaction { return cloneTransactions(l.ledger) }

// Transaction returns the ledger entry with the given ID.
func (l Loan) Transaction(id string) (Transaction, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Transaction{}, false
	}
	return l.ledger[idx], true
}

// ClearEvents returns a copy with an empty event list.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}
