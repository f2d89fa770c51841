package rental

import (
	"context"

	"droneRentalService/models"
)

// The engine accepts narrow store interfaces so tests can substitute
// in-memory fakes. The repository package provides the SQLite-backed
// implementations.

// ModelStore resolves drone models.
type ModelStore interface {
	GetByID(ctx context.Context, id int64) (*models.DroneModel, error)
}

// DroneStore resolves drones by id and serial number.
type DroneStore interface {
	GetByID(ctx context.Context, id int64) (*models.Drone, error)
	GetBySerial(ctx context.Context, serial string) (*models.Drone, error)
}

// StationStore lists all charging stations.
type StationStore interface {
	List(ctx context.Context) ([]models.Station, error)
}

// AssignmentStore lists drone-to-station docking rows in ascending
// assignment id order.
type AssignmentStore interface {
	List(ctx context.Context) ([]models.DroneStation, error)
}

// BalanceStore reads a user's current balance.
type BalanceStore interface {
	Get(ctx context.Context, userID int64) (*models.Balance, error)
}

// ReservationStore applies the state transitions of a rental as single
// atomic units.
type ReservationStore interface {
	// ReserveAndDebit marks the drone rented by the user and debits the
	// price from the user's balance, committing both or neither. The drone
	// must still be idle and the balance must still cover the price at
	// write time; otherwise it returns ErrDroneNotIdle or ErrBalanceTooLow
	// and leaves all state unchanged.
	ReserveAndDebit(ctx context.Context, droneID, userID int64, price float64) error

	// Release resets the drone to idle with no renter, but only if the
	// given user is still its renter; otherwise it returns ErrNotRenter
	// and leaves the drone unchanged.
	Release(ctx context.Context, droneID, userID int64) error
}
