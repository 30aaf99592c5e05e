package models

// MonthlySummary represents a user's derived monthly financial picture.
// AvailableToSpend is a non-persisted view, distinct from AccountBalance.
type MonthlySummary struct {
	TotalMonthlyIncome float64 `json:"total_monthly_income"`
	TotalMonthlyBills  float64 `json:"total_monthly_bills"`
	AvailableToSpend   float64 `json:"available_to_spend"`
}
