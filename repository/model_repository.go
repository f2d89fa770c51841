package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"droneRentalService/models"
)

type DroneModelRepository struct {
	db *sql.DB
}

func NewDroneModelRepository(db *sql.DB) *DroneModelRepository {
	return &DroneModelRepository{db: db}
}

// Create inserts a new drone model. Price must be non-negative; the schema
// enforces it as well.
func (r *DroneModelRepository) Create(ctx context.Context, m *models.DroneModel) (*models.DroneModel, error) {
	if m == nil {
		return nil, errors.New("drone model is nil")
	}
	if m.Price < 0 {
		return nil, errors.New("price must be non-negative")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO drone_models (name, price) VALUES (?,?)`, m.Name, m.Price)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	m.ID = id
	return m, nil
}

func (r *DroneModelRepository) GetByID(ctx context.Context, id int64) (*models.DroneModel, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var m models.DroneModel
	err := r.db.QueryRowContext(ctx, `SELECT id, name, price FROM drone_models WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *DroneModelRepository) List(ctx context.Context) ([]models.DroneModel, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, price FROM drone_models ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.DroneModel
	for rows.Next() {
		var m models.DroneModel
		if err := rows.Scan(&m.ID, &m.Name, &m.Price); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DroneModelRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `DELETE FROM drone_models WHERE id = ?`, id)
	return err
}
