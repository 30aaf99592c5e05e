package models

// BillEntry represents a recurring monthly bill. DueDate is the
// day of month (1-31) the bill is due; bills carry no month or year.
type BillEntry struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	DueDate   int     `json:"due_date"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}
