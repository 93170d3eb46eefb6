package domain

// Category vocabularies are fixed and keyed by transaction type. The
// two sets are disjoint, so a category uniquely determines its type.
var (
	IncomeCategories = []string{
		"Salary",
		"Freelance",
		"Investment",
		"Gift",
		"Other Income",
	}

	ExpenseCategories = []string{
		"Shopee Spend",
		"Badminton",
		"Tech Stuff",
		"Rackets",
		"Food & Dining",
		"Transportation",
		"Bills & Utilities",
		"Entertainment",
		"Healthcare",
		"Other Expenses",
	}
)

// CategoriesForType returns the vocabulary for the given type, or nil
// for an unknown type.
func CategoriesForType(t TransactionType) []string {
	switch t {
	case TransactionTypeIncome:
		return IncomeCategories
	case TransactionTypeExpense:
		return ExpenseCategories
	default:
		return nil
	}
}

// IsValidCategory reports whether category belongs to the vocabulary
// for the given transaction type.
func IsValidCategory(t TransactionType, category string) bool {
	for _, c := range CategoriesForType(t) {
		if c == category {
			return true
		}
	}
	return false
}
