package testutil

import (
	"github.com/google/uuid"
)

// Fixed UUIDs for deterministic testing
var (
	TestTenantID      = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestLoanID        = uuid.MustParse("00000000-0000-0000-0000-000000000020")
	TestTransactionID = uuid.MustParse("00000000-0000-0000-0000-000000000030")
)
