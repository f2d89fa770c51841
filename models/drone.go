package models

// DroneStatus represents the rental status of a drone.
type DroneStatus string

const (
	DroneStatusIdle   DroneStatus = "idle"
	DroneStatusRented DroneStatus = "rented"
)

// Drone represents a rentable drone.
// RentedBy has a one-to-one relation to User (nullable while idle).
// A drone is idle iff RentedBy is nil; the two fields change together.
type Drone struct {
	ID           int64       `db:"id" json:"id"`
	SerialNumber string      `db:"serial_number" json:"serial_number"`
	ModelID      int64       `db:"model_id" json:"model_id"`
	Status       DroneStatus `db:"status" json:"status"`
	RentedBy     *int64      `db:"rented_by" json:"rented_by"`
}
