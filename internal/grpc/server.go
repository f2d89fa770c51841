//go:build grpcserver

package grpcserver

import (
	"context"
	"database/sql"
	"net"

	adminv1 "droneRentalService/api/admin/v1"
	rentalv1 "droneRentalService/api/rental/v1"
	"droneRentalService/internal/auth"
	"droneRentalService/internal/config"
	"droneRentalService/internal/rental"
	"droneRentalService/repository"

	"google.golang.org/grpc"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// StartGRPC starts the gRPC server on the configured address and returns a
// shutdown function. The server implements RentalService and AdminService
// with the authentication interceptor.
func StartGRPC(cfg *config.Config, d *sql.DB) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	users := repository.NewUserRepository(d)
	drones := repository.NewDroneRepository(d)
	droneModels := repository.NewDroneModelRepository(d)
	stations := repository.NewStationRepository(d)
	docking := repository.NewDroneStationRepository(d)
	balances := repository.NewBalanceRepository(d)
	rentals := repository.NewRentalRepository(d)

	srv := grpc.NewServer(grpc.UnaryInterceptor(auth.NewUnaryAuthInterceptor(cfg.Auth.JWTSecret, healthCheckMethod)))

	engine := &rental.Service{
		Models:       droneModels,
		Drones:       drones,
		Stations:     stations,
		Assignments:  docking,
		Balances:     balances,
		Reservations: rentals,
	}

	rentalv1.RegisterRentalServiceServer(srv, &RentalServer{Users: users, Balances: balances, Rentals: engine})

	adminv1.RegisterAdminServiceServer(srv, &AdminServer{
		Users:    users,
		Drones:   drones,
		Models:   droneModels,
		Stations: stations,
		Docking:  docking,
		Balances: balances,
	})

	go func() { _ = srv.Serve(lis) }()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}
