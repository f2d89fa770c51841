package repository

import (
	"context"
	"errors"
	"testing"

	"droneRentalService/internal/db"
	"droneRentalService/models"
)

func TestDroneRepository_CRUD_Docking(t *testing.T) {
	d, err := db.Open("file:dronerepo?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	drones := NewDroneRepository(d)
	modelsRepo := NewDroneModelRepository(d)
	stations := NewStationRepository(d)
	docking := NewDroneStationRepository(d)
	ctx := context.Background()

	// Seed model and station
	m, err := modelsRepo.Create(ctx, &models.DroneModel{Name: "scout", Price: 50})
	if err != nil {
		t.Fatalf("create model: %v", err)
	}
	st, err := stations.Create(ctx, &models.Station{Lng: 0, Lat: 0})
	if err != nil {
		t.Fatalf("create station: %v", err)
	}

	// Create drone
	dr, err := drones.Create(ctx, &models.Drone{SerialNumber: "SN-1", ModelID: m.ID})
	if err != nil {
		t.Fatalf("create drone: %v", err)
	}
	if dr.ID == 0 || dr.Status != models.DroneStatusIdle || dr.RentedBy != nil {
		t.Fatalf("unexpected created drone: %+v", dr)
	}

	// GetBySerial
	if got, _ := drones.GetBySerial(ctx, "SN-1"); got == nil || got.ID != dr.ID {
		t.Fatalf("GetBySerial mismatch: %+v", got)
	}

	// Dock at station, resolve station back
	if _, err := docking.Create(ctx, dr.ID, st.ID); err != nil {
		t.Fatalf("dock: %v", err)
	}
	got, err := docking.GetStationForDrone(ctx, dr.ID)
	if err != nil || got == nil || got.ID != st.ID {
		t.Fatalf("GetStationForDrone: %v %+v", err, got)
	}

	// A second docking row for the same drone is rejected
	if _, err := docking.Create(ctx, dr.ID, st.ID); err == nil {
		t.Fatalf("expected unique constraint on drone docking")
	}

	// List admin filtered by status
	idle := models.DroneStatusIdle
	list, err := drones.ListAdmin(ctx, ListDronesAdminParams{Status: &idle, PageSize: 10})
	if err != nil || len(list) != 1 {
		t.Fatalf("ListAdmin: %v len=%d", err, len(list))
	}

	// Delete refuses while rented
	rentals := NewRentalRepository(d)
	users := NewUserRepository(d)
	balances := NewBalanceRepository(d)
	u, err := users.Create(ctx, "bob")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := balances.Create(ctx, u.ID, 100); err != nil {
		t.Fatalf("create balance: %v", err)
	}
	if err := rentals.ReserveAndDebit(ctx, dr.ID, u.ID, m.Price); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := drones.Delete(ctx, dr.ID); !errors.Is(err, ErrDroneRented) {
		t.Fatalf("delete rented drone: err = %v, want ErrDroneRented", err)
	}

	// After release, delete succeeds
	if err := rentals.Release(ctx, dr.ID, u.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := drones.Delete(ctx, dr.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gone, _ := drones.GetByID(ctx, dr.ID); gone != nil {
		t.Fatalf("expected drone deleted, got: %+v", gone)
	}

	// The docking row survives the drone's deletion; listing still yields it.
	rows, err := docking.List(ctx)
	if err != nil || len(rows) != 1 || rows[0].DroneID != dr.ID {
		t.Fatalf("expected dangling docking row: %v %+v", err, rows)
	}
}
