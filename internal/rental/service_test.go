package rental

import (
	"context"
	"errors"
	"sync"
	"testing"

	"droneRentalService/models"
)

// fakeStores backs the engine with plain maps so tests can set up exact
// store states, including inconsistent ones that the SQLite schema would
// reject.
type fakeStores struct {
	mu          sync.Mutex
	models      map[int64]*models.DroneModel
	drones      map[int64]*models.Drone
	stations    []models.Station
	assignments []models.DroneStation
	balances    map[int64]*models.Balance

	droneLookups int
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		models:   map[int64]*models.DroneModel{},
		drones:   map[int64]*models.Drone{},
		balances: map[int64]*models.Balance{},
	}
}

func (f *fakeStores) GetByID(ctx context.Context, id int64) (*models.DroneModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.models[id], nil
}

func (f *fakeStores) List(ctx context.Context) ([]models.Station, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stations, nil
}

func (f *fakeStores) Get(ctx context.Context, userID int64) (*models.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.balances[userID]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

// droneStore and assignmentStore wrap fakeStores so the three List/GetByID
// method sets don't collide on one receiver.
type droneStore struct{ f *fakeStores }

func (d droneStore) GetByID(ctx context.Context, id int64) (*models.Drone, error) {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	d.f.droneLookups++
	if dr, ok := d.f.drones[id]; ok {
		cp := *dr
		return &cp, nil
	}
	return nil, nil
}

func (d droneStore) GetBySerial(ctx context.Context, serial string) (*models.Drone, error) {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	for _, dr := range d.f.drones {
		if dr.SerialNumber == serial {
			cp := *dr
			return &cp, nil
		}
	}
	return nil, nil
}

type assignmentStore struct{ f *fakeStores }

func (a assignmentStore) List(ctx context.Context) ([]models.DroneStation, error) {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	return a.f.assignments, nil
}

// reservationStore applies the same conditional transitions the SQLite
// implementation does, under one mutex so racing goroutines interleave
// safely.
type reservationStore struct{ f *fakeStores }

func (r reservationStore) ReserveAndDebit(ctx context.Context, droneID, userID int64, price float64) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	dr, ok := r.f.drones[droneID]
	if !ok || dr.Status != models.DroneStatusIdle || dr.RentedBy != nil {
		return ErrDroneNotIdle
	}
	b, ok := r.f.balances[userID]
	if !ok || b.Amount < price {
		return ErrBalanceTooLow
	}
	uid := userID
	dr.Status = models.DroneStatusRented
	dr.RentedBy = &uid
	b.Amount -= price
	return nil
}

func (r reservationStore) Release(ctx context.Context, droneID, userID int64) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	dr, ok := r.f.drones[droneID]
	if !ok || dr.RentedBy == nil || *dr.RentedBy != userID {
		return ErrNotRenter
	}
	dr.Status = models.DroneStatusIdle
	dr.RentedBy = nil
	return nil
}

func newFakeService(f *fakeStores) *Service {
	return &Service{
		Models:       f,
		Drones:       droneStore{f},
		Stations:     f,
		Assignments:  assignmentStore{f},
		Balances:     f,
		Reservations: reservationStore{f},
	}
}

// seedScenario sets up the canonical fixture: stations S1(0,0) and
// S2(1000,1000), an idle and a rented drone of model 1 both docked at S1,
// and a user with balance 100 against a model price of 50.
func seedScenario(f *fakeStores) {
	f.models[1] = &models.DroneModel{ID: 1, Name: "scout", Price: 50}
	f.stations = []models.Station{{ID: 1, Lng: 0, Lat: 0}, {ID: 2, Lng: 1000, Lat: 1000}}
	renter := int64(99)
	f.drones[1] = &models.Drone{ID: 1, SerialNumber: "SN-001", ModelID: 1, Status: models.DroneStatusIdle}
	f.drones[2] = &models.Drone{ID: 2, SerialNumber: "SN-002", ModelID: 1, Status: models.DroneStatusRented, RentedBy: &renter}
	f.assignments = []models.DroneStation{
		{ID: 1, DroneID: 2, StationID: 1},
		{ID: 2, DroneID: 1, StationID: 1},
	}
	f.balances[7] = &models.Balance{UserID: 7, Amount: 100}
}

func TestRent_HappyPath(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	svc := newFakeService(f)

	serial, err := svc.Rent(context.Background(), 7, 1, 0, 0)
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	if serial != "SN-001" {
		t.Fatalf("serial = %q, want SN-001", serial)
	}
	if f.balances[7].Amount != 50 {
		t.Fatalf("balance = %v, want 50", f.balances[7].Amount)
	}
	d := f.drones[1]
	if d.Status != models.DroneStatusRented || d.RentedBy == nil || *d.RentedBy != 7 {
		t.Fatalf("drone not reserved for renter: %+v", d)
	}
}

func TestRent_NoStationInRange(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	svc := newFakeService(f)

	_, err := svc.Rent(context.Background(), 7, 1, 999999, 999999)
	if !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("err = %v, want ErrNoAvailability", err)
	}
	if f.balances[7].Amount != 100 {
		t.Fatalf("balance mutated on failed rent: %v", f.balances[7].Amount)
	}
}

func TestRent_StationAtExactRadius(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	// Move the only useful station to exactly the radius boundary.
	f.stations[0] = models.Station{ID: 1, Lng: 500, Lat: 0}
	svc := newFakeService(f)

	if _, err := svc.Rent(context.Background(), 7, 1, 0, 0); err != nil {
		t.Fatalf("station at exactly 500 units should be eligible: %v", err)
	}
}

func TestRent_InsufficientFunds(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	f.balances[7].Amount = 10
	svc := newFakeService(f)

	_, err := svc.Rent(context.Background(), 7, 1, 0, 0)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	// Nothing may be mutated by a pre-check failure.
	if f.balances[7].Amount != 10 {
		t.Fatalf("balance mutated: %v", f.balances[7].Amount)
	}
	if f.drones[1].Status != models.DroneStatusIdle {
		t.Fatalf("drone mutated: %+v", f.drones[1])
	}
}

func TestRent_UnknownModel(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	svc := newFakeService(f)

	if _, err := svc.Rent(context.Background(), 7, 42, 0, 0); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("err = %v, want ErrModelNotFound", err)
	}
}

func TestRent_NoIdleDroneOfModel(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	f.drones[1].ModelID = 2 // only the rented drone is left for model 1
	svc := newFakeService(f)

	if _, err := svc.Rent(context.Background(), 7, 1, 0, 0); !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("err = %v, want ErrNoAvailability", err)
	}
}

func TestRent_DanglingAssignmentAbortsScan(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	// First assignment row points at a drone record that no longer exists.
	// The scan stops there even though the idle drone sits behind it.
	f.assignments = []models.DroneStation{
		{ID: 1, DroneID: 404, StationID: 1},
		{ID: 2, DroneID: 1, StationID: 1},
	}
	svc := newFakeService(f)

	if _, err := svc.Rent(context.Background(), 7, 1, 0, 0); !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("err = %v, want ErrNoAvailability", err)
	}
	if f.droneLookups != 1 {
		t.Fatalf("scan continued past the dangling row: %d lookups", f.droneLookups)
	}
}

func TestRent_SkipsAssignmentsOutsideEligibleStations(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	// Park an idle drone of the right model at the far station, ahead of the
	// near one in assignment order. It must not be considered.
	f.drones[3] = &models.Drone{ID: 3, SerialNumber: "SN-003", ModelID: 1, Status: models.DroneStatusIdle}
	f.assignments = []models.DroneStation{
		{ID: 1, DroneID: 3, StationID: 2},
		{ID: 2, DroneID: 1, StationID: 1},
	}
	svc := newFakeService(f)

	serial, err := svc.Rent(context.Background(), 7, 1, 0, 0)
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	if serial != "SN-001" {
		t.Fatalf("serial = %q, want SN-001 (drone at the far station picked)", serial)
	}
}

func TestRent_FirstMatchInAssignmentOrder(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	f.drones[3] = &models.Drone{ID: 3, SerialNumber: "SN-003", ModelID: 1, Status: models.DroneStatusIdle}
	// SN-003's row precedes SN-001's, so it wins.
	f.assignments = []models.DroneStation{
		{ID: 1, DroneID: 3, StationID: 1},
		{ID: 2, DroneID: 1, StationID: 1},
	}
	svc := newFakeService(f)

	serial, err := svc.Rent(context.Background(), 7, 1, 0, 0)
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	if serial != "SN-003" {
		t.Fatalf("serial = %q, want SN-003 (first in assignment order)", serial)
	}
}

func TestRent_ConcurrentForLastDrone(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	f.balances[8] = &models.Balance{UserID: 8, Amount: 100}
	svc := newFakeService(f)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, uid := range []int64{7, 8} {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			_, err := svc.Rent(context.Background(), uid, 1, 0, 0)
			results <- err
		}(uid)
	}
	wg.Wait()
	close(results)

	var ok, unavailable int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrNoAvailability):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || unavailable != 1 {
		t.Fatalf("want exactly one success and one no-availability, got ok=%d unavailable=%d", ok, unavailable)
	}
	// Exactly one debit of exactly the price across both accounts.
	total := f.balances[7].Amount + f.balances[8].Amount
	if total != 150 {
		t.Fatalf("balances total %v, want 150 (single debit of 50)", total)
	}
}

func TestReturn_Success(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	svc := newFakeService(f)

	if _, err := svc.Rent(context.Background(), 7, 1, 0, 0); err != nil {
		t.Fatalf("Rent: %v", err)
	}
	if err := svc.Return(context.Background(), 7, "SN-001"); err != nil {
		t.Fatalf("Return: %v", err)
	}
	d := f.drones[1]
	if d.Status != models.DroneStatusIdle || d.RentedBy != nil {
		t.Fatalf("drone not reset after return: %+v", d)
	}
	// Flat per-rental charge: return does not touch the balance.
	if f.balances[7].Amount != 50 {
		t.Fatalf("balance changed on return: %v", f.balances[7].Amount)
	}
}

func TestReturn_NotRenter(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	svc := newFakeService(f)

	// SN-002 is rented by user 99; user 7 may not return it.
	if err := svc.Return(context.Background(), 7, "SN-002"); !errors.Is(err, ErrNotRenter) {
		t.Fatalf("err = %v, want ErrNotRenter", err)
	}
	d := f.drones[2]
	if d.Status != models.DroneStatusRented || d.RentedBy == nil || *d.RentedBy != 99 {
		t.Fatalf("drone state changed by rejected return: %+v", d)
	}
}

func TestReturn_UnknownSerial(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	svc := newFakeService(f)

	if err := svc.Return(context.Background(), 7, "SN-404"); !errors.Is(err, ErrDroneNotFound) {
		t.Fatalf("err = %v, want ErrDroneNotFound", err)
	}
}

func TestRentReturnRent_CyclesCleanly(t *testing.T) {
	f := newFakeStores()
	seedScenario(f)
	svc := newFakeService(f)
	ctx := context.Background()

	serial, err := svc.Rent(ctx, 7, 1, 0, 0)
	if err != nil {
		t.Fatalf("first rent: %v", err)
	}
	if err := svc.Return(ctx, 7, serial); err != nil {
		t.Fatalf("return: %v", err)
	}
	serial2, err := svc.Rent(ctx, 7, 1, 0, 0)
	if err != nil {
		t.Fatalf("second rent: %v", err)
	}
	if serial2 != serial {
		t.Fatalf("expected the returned drone to be rentable again, got %q", serial2)
	}
	if f.balances[7].Amount != 0 {
		t.Fatalf("balance = %v after two rentals at 50, want 0", f.balances[7].Amount)
	}
}
