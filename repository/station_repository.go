package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"droneRentalService/models"
)

type StationRepository struct {
	db *sql.DB
}

func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

// Create inserts a new charging station at the given planar coordinates.
func (r *StationRepository) Create(ctx context.Context, s *models.Station) (*models.Station, error) {
	if s == nil {
		return nil, errors.New("station is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO stations (lng, lat) VALUES (?,?)`, s.Lng, s.Lat)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	s.ID = id
	return s, nil
}

func (r *StationRepository) GetByID(ctx context.Context, id int64) (*models.Station, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var s models.Station
	err := r.db.QueryRowContext(ctx, `SELECT id, lng, lat FROM stations WHERE id = ?`, id).
		Scan(&s.ID, &s.Lng, &s.Lat)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Exists reports whether a station with the given id exists.
func (r *StationRepository) Exists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM stations WHERE id = ?`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *StationRepository) List(ctx context.Context) ([]models.Station, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT id, lng, lat FROM stations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Station
	for rows.Next() {
		var s models.Station
		if err := rows.Scan(&s.ID, &s.Lng, &s.Lat); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StationRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = ?`, id)
	return err
}
