package valueobject

import "fmt"

// TransactionType enumerates every monetary event the ledger records.
type TransactionType string

const (
	TypeDisbursement          TransactionType = "DISBURSEMENT"
	TypeRepayment             TransactionType = "REPAYMENT"
	TypeGoodwillCredit        TransactionType = "GOODWILL_CREDIT"
	TypeMerchantIssuedRefund  TransactionType = "MERCHANT_ISSUED_REFUND"
	TypePayoutRefund          TransactionType = "PAYOUT_REFUND"
	TypeInterestPaymentWaiver TransactionType = "INTEREST_PAYMENT_WAIVER"
	TypeChargeback            TransactionType = "CHARGEBACK"
	TypeCreditBalanceRefund   TransactionType = "CREDIT_BALANCE_REFUND"
	TypeChargeOff             TransactionType = "CHARGE_OFF"
	TypeAccrual               TransactionType = "ACCRUAL"
)

// ParseTransactionType converts a string into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TypeDisbursement, TypeRepayment, TypeGoodwillCredit, TypeMerchantIssuedRefund,
		TypePayoutRefund, TypeInterestPaymentWaiver, TypeChargeback,
		TypeCreditBalanceRefund, TypeChargeOff, TypeAccrual:
		return TransactionType(s), nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// String returns the wire representation.
func (t TransactionType) String() string {
	return string(t)
}

// Allocates reports whether transactions of this type are driven through the
// allocation engine. Chargebacks allocate too, but under the repayment rule
// and re-dated to the processing date.
func (t TransactionType) Allocates() bool {
	switch t {
	case TypeRepayment, TypeGoodwillCredit, TypeMerchantIssuedRefund,
		TypePayoutRefund, TypeInterestPaymentWaiver:
		return true
	}
	return false
}

// IsMarker reports whether the type is a zero-amount lifecycle marker.
func (t TransactionType) IsMarker() bool {
	return t == TypeChargeOff || t == TypeAccrual
}
