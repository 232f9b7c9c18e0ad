package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// Breakdown is how a transaction's amount decomposes across categories plus
// overpayment. The portions always sum to the transaction amount.
type Breakdown struct {
	Principal   decimal.Decimal
	Interest    decimal.Decimal
	Fee         decimal.Decimal
	Penalty     decimal.Decimal
	Overpayment decimal.Decimal
}

// Add increases the portion for a category.
func (b *Breakdown) Add(c valueobject.Category, amt decimal.Decimal) {
	switch c {
	case valueobject.CategoryPrincipal:
		b.Principal = b.Principal.Add(amt)
	case valueobject.CategoryInterest:
		b.Interest = b.Interest.Add(amt)
	case valueobject.CategoryFee:
		b.Fee = b.Fee.Add(amt)
	case valueobject.CategoryPenalty:
		b.Penalty = b.Penalty.Add(amt)
	}
}

// Total sums all portions including overpayment.
func (b Breakdown) Total() decimal.Decimal {
	return b.Principal.Add(b.Interest).Add(b.Fee).Add(b.Penalty).Add(b.Overpayment)
}

// Transaction is one monetary event in the ledger. A reversed transaction
// contributes nothing to any period or balance during replay but stays in the
// ledger for audit.
type Transaction struct {
	ID         string
	Sequence   int
	Date       time.Time
	Type       valueobject.TransactionType
	Amount     decimal.Decimal
	ExternalID string
	Reversed   bool

	// Derived during replay.
	Breakdown          Breakdown
	OutstandingBalance decimal.Decimal
	// IncomeRedirected flags transactions allocated after a charge-off; the
	// journal-entry poster routes their interest/fee income to recovery
	// accounts.
	IncomeRedirected bool
}

// SortChronologically orders transactions by date, with the sequence index as
// the same-date tie-break. Replay depends on this order being total.
func SortChronologically(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Sequence < txs[j].Sequence
		}
		return txs[i].Date.Before(txs[j].Date)
	})
}
