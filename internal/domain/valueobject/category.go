package valueobject

import "fmt"

// Category identifies which bucket of a repayment period an amount belongs to.
type Category string

const (
	CategoryPrincipal Category = "PRINCIPAL"
	CategoryInterest  Category = "INTEREST"
	CategoryFee       Category = "FEE"
	CategoryPenalty   Category = "PENALTY"
)

// Categories lists all categories in canonical order.
var Categories = []Category{CategoryPrincipal, CategoryInterest, CategoryFee, CategoryPenalty}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryPrincipal, CategoryInterest, CategoryFee, CategoryPenalty:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// String returns the wire representation.
func (c Category) String() string {
	return string(c)
}

// IsCharge reports whether the category is one supplied by the charge/tax
// subsystem rather than the product schedule.
func (c Category) IsCharge() bool {
	return c == CategoryFee || c == CategoryPenalty
}
