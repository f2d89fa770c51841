package repository

import "droneRentalService/internal/rental"

// The rental engine consumes its stores through the narrow interfaces in
// internal/rental. These assertions keep the SQLite repositories honest.
var (
	_ rental.ModelStore       = (*DroneModelRepository)(nil)
	_ rental.DroneStore       = (*DroneRepository)(nil)
	_ rental.StationStore     = (*StationRepository)(nil)
	_ rental.AssignmentStore  = (*DroneStationRepository)(nil)
	_ rental.BalanceStore     = (*BalanceRepository)(nil)
	_ rental.ReservationStore = (*RentalRepository)(nil)
)
