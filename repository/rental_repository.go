package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"droneRentalService/internal/rental"
	"droneRentalService/models"
)

// RentalRepository applies the state transitions of a rental. It is the
// SQLite-backed rental.ReservationStore: the drone-status change and the
// balance debit commit in one transaction, with both preconditions
// re-checked as predicates of the updates themselves.
type RentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

// ReserveAndDebit marks the drone rented by the user and debits the price
// from the user's balance as a single transaction.
//
// Two concurrent calls for the same drone cannot both succeed: the status
// change is conditional on the drone still being idle, so the loser's update
// affects zero rows and its transaction rolls back. The debit is likewise
// conditional on the balance still covering the price, so a balance mutated
// between the caller's sufficiency check and this commit cannot go negative.
func (r *RentalRepository) ReserveAndDebit(ctx context.Context, droneID, userID int64, price float64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reservation: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE drones SET status = ?, rented_by = ? WHERE id = ? AND status = ? AND rented_by IS NULL`,
		string(models.DroneStatusRented), userID, droneID, string(models.DroneStatusIdle))
	if err != nil {
		return fmt.Errorf("reserving drone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rental.ErrDroneNotIdle
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE balances SET amount = amount - ? WHERE user_id = ? AND amount >= ?`,
		price, userID, price)
	if err != nil {
		return fmt.Errorf("debiting balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rental.ErrBalanceTooLow
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reservation: %w", err)
	}
	return nil
}

// Release resets the drone to idle with no renter, conditional on the given
// user still being its renter.
func (r *RentalRepository) Release(ctx context.Context, droneID, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE drones SET status = ?, rented_by = NULL WHERE id = ? AND rented_by = ?`,
		string(models.DroneStatusIdle), droneID, userID)
	if err != nil {
		return fmt.Errorf("releasing drone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rental.ErrNotRenter
	}
	return nil
}
