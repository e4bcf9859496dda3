package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/server/auth"
	"github.com/voxgate/voxgate/internal/server/models"
)

const meteringServiceName = "voxgate.v1.Metering"

type UsageRequest struct{}

type UsageResponse struct {
	Tier                string `json:"tier"`
	CharactersUsed      int64  `json:"charactersUsed"`
	CharactersLimit     int64  `json:"charactersLimit"`
	CharactersRemaining int64  `json:"charactersRemaining"`
}

// UsageReader is the part of the voice service the metering endpoint needs.
type UsageReader interface {
	Usage(ctx context.Context, accountID string) (*models.Account, error)
}

// MeteringServer reports character usage for the authenticated account.
type MeteringServer interface {
	Usage(ctx context.Context, req *UsageRequest) (*UsageResponse, error)
}

func (s *GRPCServer) Usage(ctx context.Context, _ *UsageRequest) (*UsageResponse, error) {
	account, ok := auth.AccountFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "not authorized")
	}

	fresh, err := s.usage.Usage(ctx, account.ID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return &UsageResponse{
		Tier:                string(fresh.Tier),
		CharactersUsed:      fresh.CharactersUsed,
		CharactersLimit:     fresh.CharactersLimit,
		CharactersRemaining: fresh.Remaining(),
	}, nil
}

func (s *GRPCServer) mapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, "token expired")
	case errors.Is(err, common.ErrTokenInvalid), errors.Is(err, common.ErrTokenMalformed):
		return status.Error(codes.Unauthenticated, "not authorized")
	default:
		s.logger.Error(ctx, "grpc request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func usageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UsageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MeteringServer).Usage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + meteringServiceName + "/Usage",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MeteringServer).Usage(ctx, req.(*UsageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// MeteringServiceDesc describes the metering service for grpc.Server.
var MeteringServiceDesc = grpc.ServiceDesc{
	ServiceName: meteringServiceName,
	HandlerType: (*MeteringServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Usage", Handler: usageHandler},
	},
	Streams: []grpc.StreamDesc{},
}
