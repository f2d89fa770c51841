package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"droneRentalService/models"
)

type DroneStationRepository struct {
	db *sql.DB
}

func NewDroneStationRepository(db *sql.DB) *DroneStationRepository {
	return &DroneStationRepository{db: db}
}

// Create records that a drone is docked at a station. A drone can have at
// most one docking row; the schema enforces uniqueness on drone_id.
func (r *DroneStationRepository) Create(ctx context.Context, droneID, stationID int64) (*models.DroneStation, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO drone_station (drone_id, station_id) VALUES (?,?)`, droneID, stationID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.DroneStation{ID: id, DroneID: droneID, StationID: stationID}, nil
}

// List returns all docking rows in ascending assignment id order. The rental
// engine depends on this order being stable so drone matching is deterministic.
func (r *DroneStationRepository) List(ctx context.Context) ([]models.DroneStation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT id, drone_id, station_id FROM drone_station ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.DroneStation
	for rows.Next() {
		var ds models.DroneStation
		if err := rows.Scan(&ds.ID, &ds.DroneID, &ds.StationID); err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStationForDrone returns the station a drone is docked at, or nil if the
// drone has no docking row or the row points at a deleted station.
func (r *DroneStationRepository) GetStationForDrone(ctx context.Context, droneID int64) (*models.Station, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var s models.Station
	err := r.db.QueryRowContext(ctx, `
SELECT s.id, s.lng, s.lat FROM stations s
JOIN drone_station ds ON ds.station_id = s.id
WHERE ds.drone_id = ?`, droneID).Scan(&s.ID, &s.Lng, &s.Lat)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// DeleteByDrone removes the docking row for a drone, if any.
func (r *DroneStationRepository) DeleteByDrone(ctx context.Context, droneID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `DELETE FROM drone_station WHERE drone_id = ?`, droneID)
	return err
}
