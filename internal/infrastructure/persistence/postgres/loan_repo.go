package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
	pgutil "github.com/bibbank/loan-servicing/pkg/postgres"
)

// ErrLoanNotFound is returned when no loan matches the lookup.
var ErrLoanNotFound = errors.New("loan not found")

// ErrVersionConflict is returned when a concurrent writer got there first.
var ErrVersionConflict = errors.New("optimistic locking conflict on loan")

// LoanRepo implements port.LoanRepository. The aggregate spans three tables
// (loans, loan_periods, loan_transactions); Save rewrites all of them in one
// database transaction so a replayed snapshot never half-lands.
type LoanRepo struct {
	pool  *pgxpool.Pool
	rules valueobject.RuleTable
}

// NewLoanRepo creates a PostgreSQL-backed loan repository. The rule table is
// product configuration, not loan state, so it is injected rather than stored.
func NewLoanRepo(pool *pgxpool.Pool, rules valueobject.RuleTable) *LoanRepo {
	return &LoanRepo{pool: pool, rules: rules}
}

// Save persists the loan, its schedule and its ledger atomically.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		summary := loan.Summary()
		loanQuery := `
			INSERT INTO loans (
				id, tenant_id, currency, status,
				overpayment, charged_off,
				total_outstanding, total_repayment,
				principal_outstanding, principal_paid, total_overpaid,
				version, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			ON CONFLICT (id) DO UPDATE SET
				status                = EXCLUDED.status,
				overpayment           = EXCLUDED.overpayment,
				charged_off           = EXCLUDED.charged_off,
				total_outstanding     = EXCLUDED.total_outstanding,
				total_repayment       = EXCLUDED.total_repayment,
				principal_outstanding = EXCLUDED.principal_outstanding,
				principal_paid        = EXCLUDED.principal_paid,
				total_overpaid        = EXCLUDED.total_overpaid,
				version               = loans.version + 1,
				updated_at            = EXCLUDED.updated_at
			WHERE loans.version = $12
		`
		tag, err := tx.Exec(ctx, loanQuery,
			loan.ID(), loan.TenantID(), loan.Currency(), loan.Status().String(),
			loan.Overpayment(), loan.ChargedOff(),
			summary.TotalOutstanding, summary.TotalRepayment,
			summary.PrincipalOutstanding, summary.PrincipalPaid, summary.TotalOverpaid,
			loan.Version(), loan.CreatedAt(), loan.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}

		// Replay rewrites every period, so the schedule is replaced wholesale.
		if _, err := tx.Exec(ctx, `DELETE FROM loan_periods WHERE loan_id = $1`, loan.ID()); err != nil {
			return fmt.Errorf("clear periods: %w", err)
		}
		baseline := loan.Baseline()
		for i, p := range loan.Schedule().Periods {
			periodQuery := `
				INSERT INTO loan_periods (
					loan_id, sequence, due_date, down_payment,
					baseline_principal, baseline_interest, baseline_fee, baseline_penalty,
					principal_due, interest_due, fee_due, penalty_due,
					principal_paid, interest_paid, fee_paid, penalty_paid,
					paid_in_advance, paid_late, obligations_met_on
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			`
			b := baseline[i]
			_, err := tx.Exec(ctx, periodQuery,
				loan.ID(), p.Sequence, p.DueDate, p.DownPayment,
				b.Due.Principal, b.Due.Interest, b.Due.Fee, b.Due.Penalty,
				p.Due.Principal, p.Due.Interest, p.Due.Fee, p.Due.Penalty,
				p.Paid.Principal, p.Paid.Interest, p.Paid.Fee, p.Paid.Penalty,
				p.TotalPaidInAdvance, p.TotalPaidLate, p.ObligationsMetOn,
			)
			if err != nil {
				return fmt.Errorf("save period %d: %w", p.Sequence, err)
			}
		}

		for _, t := range loan.Ledger() {
			txQuery := `
				INSERT INTO loan_transactions (
					id, loan_id, sequence, occurred_on, type, amount, external_id, reversed,
					principal_portion, interest_portion, fee_portion, penalty_portion,
					overpayment_portion, outstanding_balance, income_redirected
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
				ON CONFLICT (id) DO UPDATE SET
					occurred_on         = EXCLUDED.occurred_on,
					amount              = EXCLUDED.amount,
					reversed            = EXCLUDED.reversed,
					principal_portion   = EXCLUDED.principal_portion,
					interest_portion    = EXCLUDED.interest_portion,
					fee_portion         = EXCLUDED.fee_portion,
					penalty_portion     = EXCLUDED.penalty_portion,
					overpayment_portion = EXCLUDED.overpayment_portion,
					outstanding_balance = EXCLUDED.outstanding_balance,
					income_redirected   = EXCLUDED.income_redirected
			`
			_, err := tx.Exec(ctx, txQuery,
				t.ID, loan.ID(), t.Sequence, t.Date, t.Type.String(), t.Amount, nullable(t.ExternalID), t.Reversed,
				t.Breakdown.Principal, t.Breakdown.Interest, t.Breakdown.Fee, t.Breakdown.Penalty,
				t.Breakdown.Overpayment, t.OutstandingBalance, t.IncomeRedirected,
			)
			if err != nil {
				return fmt.Errorf("save transaction %s: %w", t.ID, err)
			}
		}

		return nil
	})
}

// FindByID retrieves a loan with its schedule and ledger.
func (r *LoanRepo) FindByID(ctx context.Context, tenantID, id string) (model.Loan, error) {
	query := `
		SELECT id, tenant_id, currency, status,
		       overpayment, charged_off,
		       total_outstanding, total_repayment,
		       principal_outstanding, principal_paid, total_overpaid,
		       version, created_at, updated_at
		FROM loans
		WHERE tenant_id = $1 AND id = $2
	`
	return r.loadOne(ctx, query, tenantID, id)
}

// FindByExternalTransactionID retrieves the loan holding a ledger entry with
// the given external reference. Payment-gateway retries resolve through this.
func (r *LoanRepo) FindByExternalTransactionID(ctx context.Context, tenantID, externalID string) (model.Loan, error) {
	query := `
		SELECT l.id, l.tenant_id, l.currency, l.status,
		       l.overpayment, l.charged_off,
		       l.total_outstanding, l.total_repayment,
		       l.principal_outstanding, l.principal_paid, l.total_overpaid,
		       l.version, l.created_at, l.updated_at
		FROM loans l
		JOIN loan_transactions t ON t.loan_id = l.id
		WHERE l.tenant_id = $1 AND t.external_id = $2
	`
	return r.loadOne(ctx, query, tenantID, externalID)
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

type loanRow struct {
	id, tenantID, currency, status                          string
	overpayment                                             decimal.Decimal
	chargedOff                                              bool
	totalOutstanding, totalRepayment                        decimal.Decimal
	principalOutstanding, principalPaid                     decimal.Decimal
	totalOverpaid                                           *decimal.Decimal
	version                                                 int
	createdAt, updatedAt                                    time.Time
}

func (r *LoanRepo) loadOne(ctx context.Context, query string, args ...any) (model.Loan, error) {
	var row loanRow
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&row.id, &row.tenantID, &row.currency, &row.status,
		&row.overpayment, &row.chargedOff,
		&row.totalOutstanding, &row.totalRepayment,
		&row.principalOutstanding, &row.principalPaid, &row.totalOverpaid,
		&row.version, &row.createdAt, &row.updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Loan{}, ErrLoanNotFound
	}
	if err != nil {
		return model.Loan{}, fmt.Errorf("scan loan: %w", err)
	}

	status, err := valueobject.NewLoanStatus(row.status)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}

	baseline, periods, err := r.loadPeriods(ctx, row.id)
	if err != nil {
		return model.Loan{}, err
	}
	ledger, err := r.loadLedger(ctx, row.id)
	if err != nil {
		return model.Loan{}, err
	}

	summary := model.LoanSummary{
		TotalOutstanding:     row.totalOutstanding,
		TotalRepayment:       row.totalRepayment,
		PrincipalOutstanding: row.principalOutstanding,
		PrincipalPaid:        row.principalPaid,
		TotalOverpaid:        row.totalOverpaid,
	}

	return model.ReconstructLoan(
		row.id, row.tenantID, row.currency,
		baseline, r.rules,
		model.Schedule{Periods: periods}, ledger,
		row.overpayment, row.chargedOff,
		summary, status,
		row.version, row.createdAt, row.updatedAt,
	), nil
}

func (r *LoanRepo) loadPeriods(ctx context.Context, loanID string) ([]model.Period, []model.Period, error) {
	query := `
		SELECT sequence, due_date, down_payment,
		       baseline_principal, baseline_interest, baseline_fee, baseline_penalty,
		       principal_due, interest_due, fee_due, penalty_due,
		       principal_paid, interest_paid, fee_paid, penalty_paid,
		       paid_in_advance, paid_late, obligations_met_on
		FROM loan_periods
		WHERE loan_id = $1
		ORDER BY sequence
	`
	rows, err := r.pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	var baseline, periods []model.Period
	for rows.Next() {
		var (
			b, p model.Period
		)
		err := rows.Scan(
			&p.Sequence, &p.DueDate, &p.DownPayment,
			&b.Due.Principal, &b.Due.Interest, &b.Due.Fee, &b.Due.Penalty,
			&p.Due.Principal, &p.Due.Interest, &p.Due.Fee, &p.Due.Penalty,
			&p.Paid.Principal, &p.Paid.Interest, &p.Paid.Fee, &p.Paid.Penalty,
			&p.TotalPaidInAdvance, &p.TotalPaidLate, &p.ObligationsMetOn,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("scan period: %w", err)
		}
		b.Sequence = p.Sequence
		b.DueDate = p.DueDate
		b.DownPayment = p.DownPayment
		baseline = append(baseline, b)
		periods = append(periods, p)
	}
	return baseline, periods, rows.Err()
}

func (r *LoanRepo) loadLedger(ctx context.Context, loanID string) ([]model.Transaction, error) {
	query := `
		SELECT id, sequence, occurred_on, type, amount, external_id, reversed,
		       principal_portion, interest_portion, fee_portion, penalty_portion,
		       overpayment_portion, outstanding_balance, income_redirected
		FROM loan_transactions
		WHERE loan_id = $1
		ORDER BY sequence
	`
	rows, err := r.pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var ledger []model.Transaction
	for rows.Next() {
		var (
			t          model.Transaction
			typeStr    string
			externalID *string
		)
		err := rows.Scan(
			&t.ID, &t.Sequence, &t.Date, &typeStr, &t.Amount, &externalID, &t.Reversed,
			&t.Breakdown.Principal, &t.Breakdown.Interest, &t.Breakdown.Fee, &t.Breakdown.Penalty,
			&t.Breakdown.Overpayment, &t.OutstandingBalance, &t.IncomeRedirected,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type, err = valueobject.ParseTransactionType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("parse transaction type: %w", err)
		}
		if externalID != nil {
			t.ExternalID = *externalID
		}
		ledger = append(ledger, t)
	}
	return ledger, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
