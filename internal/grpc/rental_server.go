//go:build grpcserver

package grpcserver

import (
	"context"
	"errors"

	rentalv1 "droneRentalService/api/rental/v1"
	"droneRentalService/internal/auth"
	"droneRentalService/internal/rental"
	"droneRentalService/models"
	"droneRentalService/repository"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RentalServer implements rental.v1.RentalService, the end-user surface.
type RentalServer struct {
	rentalv1.UnimplementedRentalServiceServer
	Users    *repository.UserRepository
	Balances *repository.BalanceRepository
	Rentals  *rental.Service
}

// resolveCurrentUser retrieves the authenticated user from the database.
func (s *RentalServer) resolveCurrentUser(ctx context.Context, p *auth.Principal) (*models.User, error) {
	u, err := s.Users.GetByUsername(ctx, p.Name)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get user: %v", err)
	}
	if u == nil {
		return nil, status.Error(codes.NotFound, "user not found")
	}
	return u, nil
}

// Rent rents an idle drone of the requested model near the given point and
// returns its serial number.
func (s *RentalServer) Rent(ctx context.Context, req *rentalv1.RentRequest) (*rentalv1.RentResponse, error) {
	if req == nil || req.GetModelId() == 0 {
		return nil, status.Error(codes.InvalidArgument, "model_id is required")
	}

	p, err := auth.RequireEndUserOrAdmin(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.resolveCurrentUser(ctx, p)
	if err != nil {
		return nil, err
	}

	serial, err := s.Rentals.Rent(ctx, u.ID, req.GetModelId(), req.GetLongitude(), req.GetLatitude())
	if err != nil {
		return nil, rentalErrToStatus(err)
	}
	return &rentalv1.RentResponse{SerialNumber: serial}, nil
}

// Return ends the caller's rental of the drone with the given serial number.
func (s *RentalServer) Return(ctx context.Context, req *rentalv1.ReturnRequest) (*rentalv1.ReturnResponse, error) {
	if req == nil || req.GetSerialNumber() == "" {
		return nil, status.Error(codes.InvalidArgument, "serial_number is required")
	}

	p, err := auth.RequireEndUserOrAdmin(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.resolveCurrentUser(ctx, p)
	if err != nil {
		return nil, err
	}

	if err := s.Rentals.Return(ctx, u.ID, req.GetSerialNumber()); err != nil {
		return nil, rentalErrToStatus(err)
	}
	return &rentalv1.ReturnResponse{}, nil
}

// GetBalance returns the caller's current account balance.
func (s *RentalServer) GetBalance(ctx context.Context, _ *rentalv1.GetBalanceRequest) (*rentalv1.GetBalanceResponse, error) {
	p, err := auth.RequireEndUserOrAdmin(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.resolveCurrentUser(ctx, p)
	if err != nil {
		return nil, err
	}

	b, err := s.Balances.Get(ctx, u.ID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get balance: %v", err)
	}
	if b == nil {
		return nil, status.Error(codes.NotFound, "no balance account for user")
	}
	return &rentalv1.GetBalanceResponse{Amount: b.Amount}, nil
}

// rentalErrToStatus maps engine outcomes to gRPC status codes. Each engine
// condition maps to exactly one code+message pair so clients can tell
// "try elsewhere" from "fix your request".
func rentalErrToStatus(err error) error {
	switch {
	case errors.Is(err, rental.ErrModelNotFound):
		return status.Error(codes.NotFound, "drone model not found")
	case errors.Is(err, rental.ErrDroneNotFound):
		return status.Error(codes.NotFound, "drone not found")
	case errors.Is(err, rental.ErrInsufficientFunds):
		return status.Error(codes.FailedPrecondition, "insufficient funds")
	case errors.Is(err, rental.ErrNoAvailability):
		return status.Error(codes.FailedPrecondition, "no drones available within service range")
	case errors.Is(err, rental.ErrNotRenter):
		return status.Error(codes.PermissionDenied, "drone is not rented by the caller")
	default:
		return status.Errorf(codes.Internal, "rental: %v", err)
	}
}
