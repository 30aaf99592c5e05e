// Package advisor implements the spending advisor: monthly normalization of
// recurring amounts, income/bill aggregation, next-bill lookup, the
// affordability decision, and the free-form query classifier. Everything in
// this package is a pure function over in-memory lists; "today" is always an
// input, never read from the clock.
package advisor

import (
	"github.com/pulse-finance/pulse/internal/apperrors"
	"github.com/pulse-finance/pulse/internal/models"
)

// NormalizeMonthly converts a recurring amount and frequency into its
// monthly-equivalent value. Custom is treated as already monthly; this is a
// deliberate simplification, not an annualized conversion.
func NormalizeMonthly(amount float64, freq models.Frequency) (float64, error) {
	switch freq {
	case models.FrequencyWeekly:
		return amount * 4, nil
	case models.FrequencyBiWeekly:
		return amount * 2, nil
	case models.FrequencyMonthly, models.FrequencyCustom:
		return amount, nil
	default:
		return 0, apperrors.Validation("unsupported income frequency %q", string(freq))
	}
}
