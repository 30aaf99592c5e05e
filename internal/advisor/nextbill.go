package advisor

import (
	"github.com/pulse-finance/pulse/internal/models"
)

// wraparoundDays is the flat month length used when a bill's due day has
// already passed this month. Not calendar-accurate for 28/29/31-day months;
// changing it alters user-visible numbers.
const wraparoundDays = 30

// DaysUntilDue returns how many days from today (day of month, 1-31) until
// dueDate, wrapping into next month with a flat 30-day approximation.
func DaysUntilDue(dueDate, today int) int {
	if dueDate >= today {
		return dueDate - today
	}
	return dueDate - today + wraparoundDays
}

// NextBill selects the bill due soonest relative to today. The boolean is
// false when the bill list is empty; an empty list is absence, not an error.
func NextBill(bills []models.BillEntry, today int) (models.BillEntry, int, bool) {
	if len(bills) == 0 {
		return models.BillEntry{}, 0, false
	}
	next := bills[0]
	minDays := DaysUntilDue(bills[0].DueDate, today)
	for _, b := range bills[1:] {
		if d := DaysUntilDue(b.DueDate, today); d < minDays {
			next = b
			minDays = d
		}
	}
	return next, minDays, true
}
