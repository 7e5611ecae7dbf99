// Package grpc exposes the SecureDoc services over gRPC using the JSON codec
// from package api.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/securedoc/internal/api"
	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	api.UnimplementedSecureDocServer
	address    string
	users      services.Users
	categories services.Categories
	documents  services.Documents
	ledger     services.Ledger
	uploads    services.Uploads
	downloads  services.Downloads
	logger     logging.Logger
	jwtSecret  []byte
}

func NewGRPCServer(a string, l logging.Logger, set services.Set, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		users:      set.Users,
		categories: set.Categories,
		documents:  set.Documents,
		ledger:     set.Ledger,
		uploads:    set.Uploads,
		downloads:  set.Downloads,
		jwtSecret:  []byte(secretKey),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))

	// registers service
	api.RegisterSecureDocServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
