package models

// Balance represents a user's prepaid account.
// Amount may be fractional and never goes negative as an effect of a rental.
type Balance struct {
	UserID int64   `db:"user_id" json:"user_id"`
	Amount float64 `db:"amount" json:"amount"`
}
