package authrpc

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/pkg/auth"
	"github.com/jobber-dev/jobber/pkg/logger"
)

// Module provides an auth.Authenticator that delegates to the identity
// service over gRPC.
var Module = fx.Module("authrpc",
	fx.Provide(
		NewConn,
		fx.Annotate(
			func(conn *grpc.ClientConn) *Client { return NewClient(conn) },
			fx.As(new(auth.Authenticator)),
		),
	),
)

// NewConn creates a lazily-connecting client for AUTH_GRPC_URL.
func NewConn(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*grpc.ClientConn, error) {
	log = log.With(logger.Scope("authrpc"))

	if cfg.AuthRPC.URL == "" {
		return nil, &config.Error{Key: "AUTH_GRPC_URL", Reason: "is required"}
	}
	if err := cfg.AuthRPC.Validate(); err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(cfg.AuthRPC.URL, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("create auth rpc client: %w", err)
	}

	log.Info("auth delegation client configured", slog.String("target", cfg.AuthRPC.URL))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return conn.Close()
		},
	})

	return conn, nil
}

// Client calls auth.AuthService/Authenticate.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call performs the raw RPC.
func (c *Client) Call(ctx context.Context, req *AuthenticateRequest, opts ...grpc.CallOption) (*AuthenticateResponse, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AuthenticateMethod, req.toStruct(), out, opts...); err != nil {
		return nil, err
	}
	return responseFromStruct(out), nil
}

// Authenticate implements auth.Authenticator. Unauthenticated replies map to
// auth.ErrUnauthenticated; transport errors are returned as-is.
func (c *Client) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	resp, err := c.Call(ctx, &AuthenticateRequest{Token: token})
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			return nil, fmt.Errorf("%w: %s", auth.ErrUnauthenticated, status.Convert(err).Message())
		}
		return nil, err
	}
	if resp.SubjectID == "" {
		return nil, auth.ErrUnauthenticated
	}

	return &auth.Identity{SubjectID: resp.SubjectID, Email: resp.Email}, nil
}
