package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"droneRentalService/models"
)

// ErrDroneRented is returned by Delete when the drone is currently rented.
var ErrDroneRented = errors.New("drone is currently rented")

type DroneRepository struct {
	db *sql.DB
}

func NewDroneRepository(db *sql.DB) *DroneRepository {
	return &DroneRepository{db: db}
}

// Create inserts a new drone. Status defaults to 'idle' if empty; a new
// drone never has a renter.
func (r *DroneRepository) Create(ctx context.Context, d *models.Drone) (*models.Drone, error) {
	if d == nil {
		return nil, errors.New("drone is nil")
	}
	if d.Status == "" {
		d.Status = models.DroneStatusIdle
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rentedBy any
	if d.RentedBy == nil {
		rentedBy = nil
	} else {
		rentedBy = *d.RentedBy
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO drones (serial_number, model_id, status, rented_by) VALUES (?,?,?,?)`,
		d.SerialNumber, d.ModelID, string(d.Status), rentedBy)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

func (r *DroneRepository) GetByID(ctx context.Context, id int64) (*models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var d models.Drone
	var status string
	var rentedBy sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT id, serial_number, model_id, status, rented_by FROM drones WHERE id = ?`, id).
		Scan(&d.ID, &d.SerialNumber, &d.ModelID, &status, &rentedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if rentedBy.Valid {
		v := rentedBy.Int64
		d.RentedBy = &v
	}
	d.Status = models.DroneStatus(status)
	return &d, nil
}

func (r *DroneRepository) GetBySerial(ctx context.Context, serial string) (*models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var d models.Drone
	var status string
	var rentedBy sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT id, serial_number, model_id, status, rented_by FROM drones WHERE serial_number = ?`, serial).
		Scan(&d.ID, &d.SerialNumber, &d.ModelID, &status, &rentedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if rentedBy.Valid {
		v := rentedBy.Int64
		d.RentedBy = &v
	}
	d.Status = models.DroneStatus(status)
	return &d, nil
}

// Delete removes a drone by ID. A rented drone cannot be deleted; doing so
// would strand its renter mid-rental.
func (r *DroneRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `DELETE FROM drones WHERE id = ? AND status != ?`, id, string(models.DroneStatusRented))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		d, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if d != nil {
			return ErrDroneRented
		}
	}
	return nil
}

// ListDronesAdminParams contains filters and pagination for admin GetDrones.
type ListDronesAdminParams struct {
	Status         *models.DroneStatus
	ModelID        *int64
	SerialContains *string
	PageSize       int
	AfterID        int64
}

// ListAdmin returns drones matching filters ordered by id asc with keyset pagination by id.
func (r *DroneRepository) ListAdmin(ctx context.Context, p ListDronesAdminParams) ([]models.Drone, error) {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if p.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*p.Status))
	}
	if p.ModelID != nil {
		where = append(where, "model_id = ?")
		args = append(args, *p.ModelID)
	}
	if p.SerialContains != nil && strings.TrimSpace(*p.SerialContains) != "" {
		where = append(where, "serial_number LIKE ?")
		args = append(args, "%"+strings.TrimSpace(*p.SerialContains)+"%")
	}
	if p.AfterID > 0 {
		where = append(where, "id > ?")
		args = append(args, p.AfterID)
	}

	query := "SELECT id, serial_number, model_id, status, rented_by FROM drones"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC LIMIT ?"
	args = append(args, p.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Drone
	for rows.Next() {
		var d models.Drone
		var status string
		var rentedBy sql.NullInt64
		if err := rows.Scan(&d.ID, &d.SerialNumber, &d.ModelID, &status, &rentedBy); err != nil {
			return nil, err
		}
		if rentedBy.Valid {
			v := rentedBy.Int64
			d.RentedBy = &v
		}
		d.Status = models.DroneStatus(status)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
