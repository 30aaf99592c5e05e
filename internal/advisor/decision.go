package advisor

import (
	"fmt"
	"math"

	"github.com/pulse-finance/pulse/internal/apperrors"
	"github.com/pulse-finance/pulse/internal/models"
)

// cautionWindowDays bounds the near-term bill window for the Caution outcome.
// Policy: a spend is flagged when the post-spend balance would not cover the
// bills due inside this window.
const cautionWindowDays = 7

// Outcome classifies a spending decision. Exactly one outcome applies.
type Outcome string

const (
	OutcomeRejected         Outcome = "rejected"
	OutcomeCaution          Outcome = "caution"
	OutcomeApprovedNextBill Outcome = "approved_with_next_bill"
	OutcomeApprovedNoBills  Outcome = "approved_no_bills"
)

// SpendingAdvice is the advisor's answer to "can I spend this much?".
type SpendingAdvice struct {
	CanSpend bool    `json:"canSpend"`
	Outcome  Outcome `json:"outcome"`
	Message  string  `json:"message"`
}

// DecideSpending classifies a requested spend against the user's verified
// balance and bills. Outcomes are evaluated in precedence order: Rejected,
// Caution, Approved-with-next-bill, Approved-no-bills. Pure function; calling
// it twice with the same inputs yields the same advice.
func DecideSpending(requested, balance float64, bills []models.BillEntry, today int) (SpendingAdvice, error) {
	// NaN compares false against everything, so it must be rejected
	// explicitly before the positivity check.
	if math.IsNaN(requested) || math.IsInf(requested, 0) || requested <= 0 {
		return SpendingAdvice{}, apperrors.Validation("amount must be a positive number")
	}
	if today < 1 || today > 31 {
		return SpendingAdvice{}, apperrors.Validation("day of month must be between 1 and 31, got %d", today)
	}

	if requested > balance {
		return SpendingAdvice{
			CanSpend: false,
			Outcome:  OutcomeRejected,
			Message: fmt.Sprintf(
				"You can't afford to spend $%.2f right now. Your current balance is only $%.2f.",
				requested, balance),
		}, nil
	}

	newBalance := balance - requested

	var upcomingTotal float64
	for _, b := range bills {
		if DaysUntilDue(b.DueDate, today) <= cautionWindowDays {
			upcomingTotal += b.Amount
		}
	}
	if upcomingTotal > 0 && newBalance < upcomingTotal {
		return SpendingAdvice{
			CanSpend: true,
			Outcome:  OutcomeCaution,
			Message: fmt.Sprintf(
				"You can spend $%.2f, but be careful: that leaves you with $%.2f, and you have $%.2f in bills due within the next %d days. Paying them would bring you to $%.2f.",
				requested, newBalance, upcomingTotal, cautionWindowDays, newBalance-upcomingTotal),
		}, nil
	}

	if next, days, ok := NextBill(bills, today); ok {
		return SpendingAdvice{
			CanSpend: true,
			Outcome:  OutcomeApprovedNextBill,
			Message: fmt.Sprintf(
				"You can spend $%.2f. That leaves you with $%.2f. Your next bill is %s ($%.2f) due %s, which would bring you to $%.2f.",
				requested, newBalance, next.Name, next.Amount, formatDays(days), newBalance-next.Amount),
		}, nil
	}

	return SpendingAdvice{
		CanSpend: true,
		Outcome:  OutcomeApprovedNoBills,
		Message: fmt.Sprintf(
			"You can spend $%.2f. Your new balance would be $%.2f, and you have no upcoming bills.",
			requested, newBalance),
	}, nil
}

func formatDays(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "in 1 day"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
