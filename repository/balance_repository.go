package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"droneRentalService/internal/rental"
	"droneRentalService/models"
)

type BalanceRepository struct {
	db *sql.DB
}

func NewBalanceRepository(db *sql.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// Create inserts a balance row for the user with the given starting amount.
func (r *BalanceRepository) Create(ctx context.Context, userID int64, amount float64) (*models.Balance, error) {
	if amount < 0 {
		return nil, errors.New("amount must be non-negative")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `INSERT INTO balances (user_id, amount) VALUES (?,?)`, userID, amount)
	if err != nil {
		return nil, err
	}
	return &models.Balance{UserID: userID, Amount: amount}, nil
}

func (r *BalanceRepository) Get(ctx context.Context, userID int64) (*models.Balance, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var b models.Balance
	err := r.db.QueryRowContext(ctx, `SELECT user_id, amount FROM balances WHERE user_id = ?`, userID).
		Scan(&b.UserID, &b.Amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BalanceRepository) List(ctx context.Context) ([]models.Balance, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, amount FROM balances ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Balance
	for rows.Next() {
		var b models.Balance
		if err := rows.Scan(&b.UserID, &b.Amount); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Add credits the user's balance by amount.
func (r *BalanceRepository) Add(ctx context.Context, userID int64, amount float64) error {
	if amount < 0 {
		return errors.New("amount must be non-negative")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE balances SET amount = amount + ? WHERE user_id = ?`, amount, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Subtract debits the user's balance by amount. The debit is conditional on
// the balance covering it; a balance never goes negative through this path.
func (r *BalanceRepository) Subtract(ctx context.Context, userID int64, amount float64) error {
	if amount < 0 {
		return errors.New("amount must be non-negative")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE balances SET amount = amount - ? WHERE user_id = ? AND amount >= ?`, amount, userID, amount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rental.ErrBalanceTooLow
	}
	return nil
}
