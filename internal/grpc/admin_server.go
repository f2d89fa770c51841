//go:build grpcserver

package grpcserver

import (
	"context"
	"errors"
	"strings"

	adminv1 "droneRentalService/api/admin/v1"
	"droneRentalService/internal/auth"
	"droneRentalService/models"
	"droneRentalService/repository"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AdminServer implements admin.v1.AdminService.
type AdminServer struct {
	adminv1.UnimplementedAdminServiceServer
	Users    *repository.UserRepository
	Drones   *repository.DroneRepository
	Models   *repository.DroneModelRepository
	Stations *repository.StationRepository
	Docking  *repository.DroneStationRepository
	Balances *repository.BalanceRepository
}

const (
	maxPageSize     = 100 // Maximum allowed page size for list operations.
	defaultPageSize = 20  // Default page size for list operations.
)

// CreateDrone registers a new drone and docks it at an existing station.
func (s *AdminServer) CreateDrone(ctx context.Context, req *adminv1.CreateDroneRequest) (*adminv1.CreateDroneResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.GetSerialNumber()) == "" || req.GetModelId() == 0 || req.GetStationId() == 0 {
		return nil, status.Error(codes.InvalidArgument, "serial_number, model_id and station_id are required")
	}

	m, err := s.Models.GetByID(ctx, req.GetModelId())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get model: %v", err)
	}
	if m == nil {
		return nil, status.Error(codes.InvalidArgument, "unknown drone model")
	}
	ok, err := s.Stations.Exists(ctx, req.GetStationId())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "check station: %v", err)
	}
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "unknown station")
	}

	dr, err := s.Drones.Create(ctx, &models.Drone{
		SerialNumber: strings.TrimSpace(req.GetSerialNumber()),
		ModelID:      req.GetModelId(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "create drone: %v", err)
	}
	if _, err := s.Docking.Create(ctx, dr.ID, req.GetStationId()); err != nil {
		return nil, status.Errorf(codes.Internal, "dock drone: %v", err)
	}
	return &adminv1.CreateDroneResponse{Drone: toProtoDrone(dr)}, nil
}

// DeleteDrone removes a drone and its docking row. A rented drone cannot be
// deleted.
func (s *AdminServer) DeleteDrone(ctx context.Context, req *adminv1.DeleteDroneRequest) (*adminv1.DeleteDroneResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil || req.GetId() == 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	if err := s.Drones.Delete(ctx, req.GetId()); err != nil {
		if errors.Is(err, repository.ErrDroneRented) {
			return nil, status.Error(codes.FailedPrecondition, "drone is currently rented")
		}
		return nil, status.Errorf(codes.Internal, "delete drone: %v", err)
	}
	if err := s.Docking.DeleteByDrone(ctx, req.GetId()); err != nil {
		return nil, status.Errorf(codes.Internal, "undock drone: %v", err)
	}
	return &adminv1.DeleteDroneResponse{}, nil
}

// GetDrones lists drones with optional filters and keyset pagination.
func (s *AdminServer) GetDrones(ctx context.Context, req *adminv1.GetDronesRequest) (*adminv1.GetDronesResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil {
		req = &adminv1.GetDronesRequest{}
	}
	size := int(req.GetPageSize())
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	params := repository.ListDronesAdminParams{PageSize: size, AfterID: req.GetAfterId()}
	switch req.GetStatusFilter() {
	case adminv1.DroneStatus_IDLE:
		st := models.DroneStatusIdle
		params.Status = &st
	case adminv1.DroneStatus_RENTED:
		st := models.DroneStatusRented
		params.Status = &st
	}
	if req.GetModelIdFilter() != 0 {
		v := req.GetModelIdFilter()
		params.ModelID = &v
	}
	if strings.TrimSpace(req.GetSerialContains()) != "" {
		v := req.GetSerialContains()
		params.SerialContains = &v
	}

	list, err := s.Drones.ListAdmin(ctx, params)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list drones: %v", err)
	}
	out := make([]*adminv1.Drone, 0, len(list))
	for i := range list {
		out = append(out, toProtoDrone(&list[i]))
	}
	return &adminv1.GetDronesResponse{Drones: out}, nil
}

// GetDroneStation returns the station a drone is docked at.
func (s *AdminServer) GetDroneStation(ctx context.Context, req *adminv1.GetDroneStationRequest) (*adminv1.GetDroneStationResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil || req.GetDroneId() == 0 {
		return nil, status.Error(codes.InvalidArgument, "drone_id is required")
	}

	dr, err := s.Drones.GetByID(ctx, req.GetDroneId())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get drone: %v", err)
	}
	if dr == nil {
		return nil, status.Error(codes.NotFound, "drone not found")
	}
	st, err := s.Docking.GetStationForDrone(ctx, dr.ID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get station: %v", err)
	}
	if st == nil {
		return nil, status.Error(codes.NotFound, "drone is not docked at any station")
	}
	return &adminv1.GetDroneStationResponse{Station: toProtoStation(st)}, nil
}

// CreateDroneModel registers a drone model with a per-rental price.
func (s *AdminServer) CreateDroneModel(ctx context.Context, req *adminv1.CreateDroneModelRequest) (*adminv1.CreateDroneModelResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.GetName()) == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if req.GetPrice() < 0 {
		return nil, status.Error(codes.InvalidArgument, "price must be non-negative")
	}

	m, err := s.Models.Create(ctx, &models.DroneModel{Name: strings.TrimSpace(req.GetName()), Price: req.GetPrice()})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "create model: %v", err)
	}
	return &adminv1.CreateDroneModelResponse{Model: toProtoModel(m)}, nil
}

func (s *AdminServer) DeleteDroneModel(ctx context.Context, req *adminv1.DeleteDroneModelRequest) (*adminv1.DeleteDroneModelResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil || req.GetId() == 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if err := s.Models.Delete(ctx, req.GetId()); err != nil {
		return nil, status.Errorf(codes.Internal, "delete model: %v", err)
	}
	return &adminv1.DeleteDroneModelResponse{}, nil
}

func (s *AdminServer) GetDroneModels(ctx context.Context, _ *adminv1.GetDroneModelsRequest) (*adminv1.GetDroneModelsResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	list, err := s.Models.List(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list models: %v", err)
	}
	out := make([]*adminv1.DroneModel, 0, len(list))
	for i := range list {
		out = append(out, toProtoModel(&list[i]))
	}
	return &adminv1.GetDroneModelsResponse{Models: out}, nil
}

// CreateStation registers a charging station at the given coordinates.
func (s *AdminServer) CreateStation(ctx context.Context, req *adminv1.CreateStationRequest) (*adminv1.CreateStationResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	st, err := s.Stations.Create(ctx, &models.Station{Lng: req.GetLongitude(), Lat: req.GetLatitude()})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "create station: %v", err)
	}
	return &adminv1.CreateStationResponse{Station: toProtoStation(st)}, nil
}

func (s *AdminServer) DeleteStation(ctx context.Context, req *adminv1.DeleteStationRequest) (*adminv1.DeleteStationResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil || req.GetId() == 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if err := s.Stations.Delete(ctx, req.GetId()); err != nil {
		return nil, status.Errorf(codes.Internal, "delete station: %v", err)
	}
	return &adminv1.DeleteStationResponse{}, nil
}

func (s *AdminServer) GetStations(ctx context.Context, _ *adminv1.GetStationsRequest) (*adminv1.GetStationsResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	list, err := s.Stations.List(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list stations: %v", err)
	}
	out := make([]*adminv1.Station, 0, len(list))
	for i := range list {
		out = append(out, toProtoStation(&list[i]))
	}
	return &adminv1.GetStationsResponse{Stations: out}, nil
}

// CreateUser registers an end user.
func (s *AdminServer) CreateUser(ctx context.Context, req *adminv1.CreateUserRequest) (*adminv1.CreateUserResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.GetUsername()) == "" {
		return nil, status.Error(codes.InvalidArgument, "username is required")
	}
	u, err := s.Users.Create(ctx, strings.TrimSpace(req.GetUsername()))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "create user: %v", err)
	}
	return &adminv1.CreateUserResponse{User: &adminv1.User{Id: u.ID, Username: u.Username, Role: u.Role}}, nil
}

func (s *AdminServer) GetUsers(ctx context.Context, req *adminv1.GetUsersRequest) (*adminv1.GetUsersResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil {
		req = &adminv1.GetUsersRequest{}
	}
	list, err := s.Users.List(ctx, int(req.GetLimit()), int(req.GetOffset()))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list users: %v", err)
	}
	out := make([]*adminv1.User, 0, len(list))
	for _, u := range list {
		out = append(out, &adminv1.User{Id: u.ID, Username: u.Username, Role: u.Role})
	}
	return &adminv1.GetUsersResponse{Users: out}, nil
}

// CreateBalance opens a balance account for a user.
func (s *AdminServer) CreateBalance(ctx context.Context, req *adminv1.CreateBalanceRequest) (*adminv1.CreateBalanceResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil || req.GetUserId() == 0 {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	if req.GetAmount() < 0 {
		return nil, status.Error(codes.InvalidArgument, "amount must be non-negative")
	}
	b, err := s.Balances.Create(ctx, req.GetUserId(), req.GetAmount())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "create balance: %v", err)
	}
	return &adminv1.CreateBalanceResponse{Balance: &adminv1.Balance{UserId: b.UserID, Amount: b.Amount}}, nil
}

func (s *AdminServer) AddBalance(ctx context.Context, req *adminv1.AddBalanceRequest) (*adminv1.AddBalanceResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil || req.GetUserId() == 0 {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	if req.GetAmount() < 0 {
		return nil, status.Error(codes.InvalidArgument, "amount must be non-negative")
	}
	if err := s.Balances.Add(ctx, req.GetUserId(), req.GetAmount()); err != nil {
		return nil, status.Errorf(codes.Internal, "add balance: %v", err)
	}
	return &adminv1.AddBalanceResponse{}, nil
}

func (s *AdminServer) SubtractBalance(ctx context.Context, req *adminv1.SubtractBalanceRequest) (*adminv1.SubtractBalanceResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil || req.GetUserId() == 0 {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	if req.GetAmount() < 0 {
		return nil, status.Error(codes.InvalidArgument, "amount must be non-negative")
	}
	if err := s.Balances.Subtract(ctx, req.GetUserId(), req.GetAmount()); err != nil {
		return nil, status.Errorf(codes.FailedPrecondition, "subtract balance: %v", err)
	}
	return &adminv1.SubtractBalanceResponse{}, nil
}

func (s *AdminServer) GetBalance(ctx context.Context, req *adminv1.GetBalanceRequest) (*adminv1.GetBalanceResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	if req == nil || req.GetUserId() == 0 {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	b, err := s.Balances.Get(ctx, req.GetUserId())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get balance: %v", err)
	}
	if b == nil {
		return nil, status.Error(codes.NotFound, "balance not found")
	}
	return &adminv1.GetBalanceResponse{Balance: &adminv1.Balance{UserId: b.UserID, Amount: b.Amount}}, nil
}

func (s *AdminServer) GetBalances(ctx context.Context, _ *adminv1.GetBalancesRequest) (*adminv1.GetBalancesResponse, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	list, err := s.Balances.List(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list balances: %v", err)
	}
	out := make([]*adminv1.Balance, 0, len(list))
	for _, b := range list {
		out = append(out, &adminv1.Balance{UserId: b.UserID, Amount: b.Amount})
	}
	return &adminv1.GetBalancesResponse{Balances: out}, nil
}

// toProtoDrone converts a models.Drone to a proto Drone message.
func toProtoDrone(d *models.Drone) *adminv1.Drone {
	if d == nil {
		return nil
	}
	out := &adminv1.Drone{
		Id:           d.ID,
		SerialNumber: d.SerialNumber,
		ModelId:      d.ModelID,
		Status:       toProtoDroneStatus(d.Status),
	}
	if d.RentedBy != nil {
		v := *d.RentedBy
		out.RentedBy = &v
	}
	return out
}

func toProtoDroneStatus(s models.DroneStatus) adminv1.DroneStatus {
	switch s {
	case models.DroneStatusIdle:
		return adminv1.DroneStatus_IDLE
	case models.DroneStatusRented:
		return adminv1.DroneStatus_RENTED
	default:
		return adminv1.DroneStatus_DRONE_STATUS_UNSPECIFIED
	}
}

func toProtoModel(m *models.DroneModel) *adminv1.DroneModel {
	if m == nil {
		return nil
	}
	return &adminv1.DroneModel{Id: m.ID, Name: m.Name, Price: m.Price}
}

func toProtoStation(st *models.Station) *adminv1.Station {
	if st == nil {
		return nil
	}
	return &adminv1.Station{Id: st.ID, Longitude: st.Lng, Latitude: st.Lat}
}
