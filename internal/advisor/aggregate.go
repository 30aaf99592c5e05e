package advisor

import (
	"github.com/pulse-finance/pulse/internal/models"
)

// TotalMonthlyIncome sums a user's income entries normalized to a monthly
// cadence. The sum is order-independent.
func TotalMonthlyIncome(entries []models.IncomeEntry) (float64, error) {
	var total float64
	for _, e := range entries {
		monthly, err := NormalizeMonthly(e.Amount, e.Frequency)
		if err != nil {
			return 0, err
		}
		total += monthly
	}
	return total, nil
}

// TotalMonthlyBills sums raw bill amounts. Bills are not frequency-normalized:
// each bill amount is already a monthly due amount by construction.
func TotalMonthlyBills(bills []models.BillEntry) float64 {
	var total float64
	for _, b := range bills {
		total += b.Amount
	}
	return total
}

// Summarize computes the derived monthly picture for a user. AvailableToSpend
// may be negative; that is a displayable state, not an error.
func Summarize(incomes []models.IncomeEntry, bills []models.BillEntry) (models.MonthlySummary, error) {
	income, err := TotalMonthlyIncome(incomes)
	if err != nil {
		return models.MonthlySummary{}, err
	}
	billTotal := TotalMonthlyBills(bills)
	return models.MonthlySummary{
		TotalMonthlyIncome: income,
		TotalMonthlyBills:  billTotal,
		AvailableToSpend:   income - billTotal,
	}, nil
}
