package models

// DroneModel represents a drone product line with a flat per-rental price.
type DroneModel struct {
	ID    int64   `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Price float64 `db:"price" json:"price"`
}
