package models

// User represents a registered Pulse user
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Not serialized
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}
