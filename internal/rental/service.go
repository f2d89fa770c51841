package rental

import (
	"context"
	"errors"
	"fmt"

	"droneRentalService/internal/geo"
	"droneRentalService/models"
)

// Service is the rental allocation engine. Given a user, a desired drone
// model and an origin point it locates an eligible station within the
// service radius, picks an idle drone of that model docked there, and
// atomically reserves it while debiting the user's balance. Return is the
// symmetric flow.
//
// All collaborators are injected as narrow store interfaces.
type Service struct {
	Models       ModelStore
	Drones       DroneStore
	Stations     StationStore
	Assignments  AssignmentStore
	Balances     BalanceStore
	Reservations ReservationStore

	// Radius overrides the service radius; zero means geo.MaxServiceRadius.
	Radius float64
}

func (s *Service) radius() float64 {
	if s.Radius > 0 {
		return s.Radius
	}
	return geo.MaxServiceRadius
}

// Rent rents an idle drone of the given model near the origin point for the
// user and returns its serial number. The reservation and the balance debit
// commit together or not at all.
//
// Failure modes: ErrModelNotFound, ErrInsufficientFunds, ErrNoAvailability.
func (s *Service) Rent(ctx context.Context, userID, modelID int64, lng, lat float64) (string, error) {
	model, err := s.Models.GetByID(ctx, modelID)
	if err != nil {
		return "", fmt.Errorf("get model: %w", err)
	}
	if model == nil {
		return "", ErrModelNotFound
	}

	bal, err := s.Balances.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get balance: %w", err)
	}
	if bal == nil || bal.Amount < model.Price {
		return "", ErrInsufficientFunds
	}

	stations, err := s.Stations.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list stations: %w", err)
	}
	eligible := nearbyStations(stations, lng, lat, s.radius())
	if len(eligible) == 0 {
		return "", ErrNoAvailability
	}

	drone, err := s.findAvailableDrone(ctx, eligible, modelID)
	if err != nil {
		return "", err
	}
	if drone == nil {
		return "", ErrNoAvailability
	}

	if err := s.Reservations.ReserveAndDebit(ctx, drone.ID, userID, model.Price); err != nil {
		switch {
		case errors.Is(err, ErrDroneNotIdle):
			// A concurrent rental won the race; to this caller the outcome
			// is the same as the drone never having been available.
			return "", ErrNoAvailability
		case errors.Is(err, ErrBalanceTooLow):
			return "", ErrInsufficientFunds
		default:
			return "", fmt.Errorf("reserve drone %d: %w", drone.ID, err)
		}
	}

	return drone.SerialNumber, nil
}

// Return ends the user's rental of the drone with the given serial number,
// resetting it to idle with no renter. Only the current renter may return a
// drone; a return has no balance effect.
//
// Failure modes: ErrDroneNotFound, ErrNotRenter.
func (s *Service) Return(ctx context.Context, userID int64, serial string) error {
	drone, err := s.Drones.GetBySerial(ctx, serial)
	if err != nil {
		return fmt.Errorf("get drone by serial: %w", err)
	}
	if drone == nil {
		return ErrDroneNotFound
	}
	if drone.RentedBy == nil || *drone.RentedBy != userID {
		return ErrNotRenter
	}

	// The renter check is repeated inside the conditional update, so a
	// racing return cannot release a drone re-rented in between.
	if err := s.Reservations.Release(ctx, drone.ID, userID); err != nil {
		if errors.Is(err, ErrNotRenter) {
			return ErrNotRenter
		}
		return fmt.Errorf("release drone %d: %w", drone.ID, err)
	}
	return nil
}

// nearbyStations filters stations to those within radius units of the origin
// point. The boundary is inclusive. An empty result means no eligible
// station, not an error.
func nearbyStations(stations []models.Station, lng, lat, radius float64) []models.Station {
	var out []models.Station
	for _, st := range stations {
		if geo.WithinRadius(st.Lng, st.Lat, lng, lat, radius) {
			out = append(out, st)
		}
	}
	return out
}

// findAvailableDrone scans docking rows restricted to the eligible stations,
// in ascending assignment id order, and returns the first idle drone of the
// requested model. A docking row whose drone id resolves to no drone record
// aborts the scan: the store is inconsistent at that point and the scan does
// not guess at what the remaining rows mean. Returns nil when nothing
// matches.
func (s *Service) findAvailableDrone(ctx context.Context, eligible []models.Station, modelID int64) (*models.Drone, error) {
	assignments, err := s.Assignments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	stationIDs := make(map[int64]struct{}, len(eligible))
	for _, st := range eligible {
		stationIDs[st.ID] = struct{}{}
	}

	for _, as := range assignments {
		if _, ok := stationIDs[as.StationID]; !ok {
			continue
		}
		drone, err := s.Drones.GetByID(ctx, as.DroneID)
		if err != nil {
			return nil, fmt.Errorf("get drone %d: %w", as.DroneID, err)
		}
		if drone == nil {
			return nil, nil
		}
		if drone.ModelID == modelID && drone.Status == models.DroneStatusIdle {
			return drone, nil
		}
	}
	return nil, nil
}
