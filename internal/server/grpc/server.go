package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/fieldlog/internal/api"
	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"google.golang.org/grpc"
)

// FootageService issues presigned URLs for tape footage.
type FootageService interface {
	UploadURL(ctx context.Context, tapeID string) (string, string, error)
	ConfirmUpload(ctx context.Context, tapeID string) (*models.Tape, error)
	DownloadURL(ctx context.Context, tapeID string) (string, error)
}

var _ api.SessionServiceServer = (*GRPCServer)(nil)

type GRPCServer struct {
	address   string
	sessions  *Sessions
	footage   FootageService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, sessions *Sessions, footage FootageService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		sessions:  sessions,
		footage:   footage,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a grpc.Server with the access token interceptor and the
// session service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	api.RegisterSessionServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
