package authgrpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"go.uber.org/fx"
	"google.golang.org/grpc"

	"github.com/jobber-dev/jobber/domain/session"
	"github.com/jobber-dev/jobber/domain/users"
	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/pkg/auth"
	"github.com/jobber-dev/jobber/pkg/authrpc"
	"github.com/jobber-dev/jobber/pkg/logger"
)

// Module serves auth.AuthService and provides the in-process Authenticator
var Module = fx.Module("authgrpc",
	fx.Provide(
		func(m *session.TokenManager) TokenVerifier { return m },
		func(s *users.Service) SubjectLookup { return s },
		NewServer,
		func(s *Server) auth.Authenticator { return s },
		NewGRPCServer,
	),
	fx.Invoke(StartGRPCServer),
)

// NewGRPCServer creates a grpc.Server with auth.AuthService registered.
func NewGRPCServer(srv *Server, log *slog.Logger) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(log.With(logger.Scope("grpc")))))
	authrpc.RegisterAuthServiceServer(s, rpcHandler{srv: srv})
	return s
}

// StartGRPCServer listens on AUTH_GRPC_PORT and stops gracefully on shutdown.
func StartGRPCServer(lc fx.Lifecycle, s *grpc.Server, cfg *config.Config, log *slog.Logger) {
	log = log.With(logger.Scope("grpc"))
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddress, cfg.AuthRPC.Port)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen grpc %s: %w", addr, err)
			}
			log.Info("starting gRPC server", slog.String("address", lis.Addr().String()))

			go func() {
				if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
					log.Error("grpc server error", logger.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down gRPC server")

			done := make(chan struct{})
			go func() {
				s.GracefulStop()
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				s.Stop()
			}
			return nil
		},
	})
}

func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := []any{
			slog.String("method", info.FullMethod),
			slog.Duration("latency", time.Since(start)),
		}
		if err != nil {
			attrs = append(attrs, logger.Error(err))
		}
		log.Debug("grpc call", attrs...)

		return resp, err
	}
}
