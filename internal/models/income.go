package models

// Frequency enumerates how often an income source pays out.
type Frequency string

const (
	FrequencyWeekly   Frequency = "Weekly"
	FrequencyBiWeekly Frequency = "Bi-weekly"
	FrequencyMonthly  Frequency = "Monthly"
	// FrequencyCustom is treated as monthly when normalizing. This is a
	// deliberate simplification, not an annualized conversion.
	FrequencyCustom Frequency = "Custom"
)

// Valid reports whether f is one of the four supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly, FrequencyCustom:
		return true
	}
	return false
}

// IncomeEntry represents a recurring income source
type IncomeEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Source    string    `json:"source"`
	Amount    float64   `json:"amount"`
	Frequency Frequency `json:"frequency"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}
