package models

// Station represents a charging station where drones dock between rentals.
// Coordinates are planar; no geodesic projection is applied.
type Station struct {
	ID  int64   `db:"id" json:"id"`
	Lng float64 `db:"lng" json:"lng"`
	Lat float64 `db:"lat" json:"lat"`
}

// DroneStation records which station a drone is currently docked at.
// A drone is expected to have exactly one active row at any time; the
// rental engine does not repair multiplicity violations.
type DroneStation struct {
	ID        int64 `db:"id" json:"id"`
	DroneID   int64 `db:"drone_id" json:"drone_id"`
	StationID int64 `db:"station_id" json:"station_id"`
}
