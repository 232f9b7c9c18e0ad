package usecase

import "sync"

// LoanLocker serialises writes per loan. Replay folds the whole ledger, so
// two concurrent writes to the same loan must not interleave between read and
// save; different loans proceed in parallel.
type LoanLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLoanLocker creates an empty locker.
func NewLoanLocker() *LoanLocker {
	return &LoanLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for one loan and returns the unlock function.
func (l *LoanLocker) Lock(loanID string) func() {
	l.mu.Lock()
	m, ok := l.locks[loanID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[loanID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
