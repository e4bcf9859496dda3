package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/voxgate/voxgate/internal/logging"
	"github.com/voxgate/voxgate/internal/server/auth"
)

type GRPCServer struct {
	address string
	authn   *auth.Authenticator
	usage   UsageReader
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, authn *auth.Authenticator, usage UsageReader) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		authn:   authn,
		usage:   usage,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.authInterceptor))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(meteringServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	srv.RegisterService(&MeteringServiceDesc, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
