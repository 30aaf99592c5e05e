package models

// AccountBalance is the user-verified balance. A nil Balance means the
// user has never verified one. It is never derived from income or bills.
type AccountBalance struct {
	UserID    int64    `json:"user_id"`
	Balance   *float64 `json:"balance"`
	UpdatedAt string   `json:"updated_at"`
}

// Set reports whether the user has verified a balance.
func (b *AccountBalance) Set() bool {
	return b != nil && b.Balance != nil
}
