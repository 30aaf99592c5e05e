package advisor

import (
	"fmt"
	"strings"

	"github.com/pulse-finance/pulse/internal/apperrors"
	"github.com/pulse-finance/pulse/internal/models"
)

// QueryInput carries everything the classifier may need. Balance is nil when
// the user has never verified one; KeyRate is nil when the central-bank rate
// is unavailable.
type QueryInput struct {
	Incomes []models.IncomeEntry
	Bills   []models.BillEntry
	Balance *float64
	Today   int
	KeyRate *float64
}

// savingsShare is the slice of available income the savings template suggests
// setting aside each month.
const savingsShare = 0.20

// WantsSavings reports whether a free-text query matches the savings
// keywords. Callers that prefetch the key rate use the same predicate as the
// classifier branch so the keyword set cannot drift between layers.
func WantsSavings(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(q, "saving") || strings.Contains(q, "save")
}

// AnswerQuery routes a free-text question to one of six canned templates by
// case-insensitive substring match. Priority order is fixed: balance, bills,
// income, savings, spend, fallback; the first match wins. No NLP.
func AnswerQuery(query string, in QueryInput) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", apperrors.Validation("query must not be empty")
	}

	summary, err := Summarize(in.Incomes, in.Bills)
	if err != nil {
		return "", err
	}

	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "balance"):
		return balanceAnswer(in.Balance, summary), nil
	case strings.Contains(q, "bill"):
		return billsAnswer(in.Bills, summary, in.Today), nil
	case strings.Contains(q, "income") || strings.Contains(q, "earn"):
		return fmt.Sprintf(
			"Your total monthly income is $%.2f across %d source(s).",
			summary.TotalMonthlyIncome, len(in.Incomes)), nil
	case WantsSavings(query):
		return savingsAnswer(summary, in.KeyRate), nil
	case strings.Contains(q, "spend") || strings.Contains(q, "afford"):
		return fmt.Sprintf(
			"After your monthly bills of $%.2f, you have $%.2f of your income left to spend. For a specific purchase, ask the spending advisor with an amount.",
			summary.TotalMonthlyBills, summary.AvailableToSpend), nil
	default:
		return "I can help with questions about your balance, bills, income, savings, or spending. Try asking about one of those.", nil
	}
}

func balanceAnswer(balance *float64, summary models.MonthlySummary) string {
	if balance == nil {
		return fmt.Sprintf(
			"You haven't verified an account balance yet. Based on your income and bills, you have $%.2f available to spend each month.",
			summary.AvailableToSpend)
	}
	return fmt.Sprintf(
		"Your current balance is $%.2f. Based on your income and bills, you have $%.2f available to spend each month.",
		*balance, summary.AvailableToSpend)
}

func billsAnswer(bills []models.BillEntry, summary models.MonthlySummary, today int) string {
	next, days, ok := NextBill(bills, today)
	if !ok {
		return "You have no bills on record."
	}
	return fmt.Sprintf(
		"You have %d bill(s) totaling $%.2f per month. Your next bill is %s ($%.2f) due %s.",
		len(bills), summary.TotalMonthlyBills, next.Name, next.Amount, formatDays(days))
}

func savingsAnswer(summary models.MonthlySummary, keyRate *float64) string {
	if summary.AvailableToSpend <= 0 {
		return fmt.Sprintf(
			"Your bills currently meet or exceed your income ($%.2f available), so there's no room to save this month. Consider reviewing your bills.",
			summary.AvailableToSpend)
	}
	msg := fmt.Sprintf(
		"You have $%.2f left after bills each month. Setting aside $%.2f of it would be a solid start.",
		summary.AvailableToSpend, summary.AvailableToSpend*savingsShare)
	if keyRate != nil {
		msg += fmt.Sprintf(" The central bank key rate is currently %.2f%%, a useful benchmark for a savings account.", *keyRate)
	}
	return msg
}
