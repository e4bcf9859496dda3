package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/server/auth"
	"github.com/voxgate/voxgate/internal/server/models"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// authInterceptor resolves the caller for every method but the health
// service, from "authorization: Bearer <token>" or "x-api-key" metadata.
func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
		return handler(ctx, req)
	}

	md, _ := metadata.FromIncomingContext(ctx)
	header := firstValue(md, strings.ToLower(common.AuthorizationHeaderName))
	key := firstValue(md, strings.ToLower(common.APIKeyHeaderName))

	var (
		account *models.Account
		err     error
	)
	switch {
	case header != "":
		token, found := strings.CutPrefix(header, common.BearerPrefix)
		if !found || strings.TrimSpace(token) == "" {
			err = common.ErrTokenMalformed
			break
		}
		account, err = s.authn.FromToken(ctx, strings.TrimSpace(token))
	case key != "":
		account, err = s.authn.FromAPIKey(ctx, key)
	default:
		err = common.ErrTokenInvalid
	}
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return handler(auth.WithAccount(ctx, account), req)
}
