package grpc

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tair/stock-ledger/pkg/logger"
)

// LoggingInterceptor logs gRPC requests
func LoggingInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	duration := time.Since(start)
	code := status.Code(err)

	var event *zerolog.Event
	switch code {
	case codes.OK, codes.NotFound, codes.InvalidArgument:
		event = logger.Info(ctx)
	case codes.Internal, codes.Unknown, codes.DataLoss:
		event = logger.Error(ctx).Err(err)
	default:
		event = logger.Warn(ctx).Err(err)
	}

	event.
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Dur("duration", duration).
		Msg("gRPC request completed")

	return resp, err
}

// RecoveryInterceptor turns a handler panic into codes.Internal
func RecoveryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx).
				Interface("panic", r).
				Str("method", info.FullMethod).
				Msg("gRPC panic recovered")
			err = status.Error(codes.Internal, "internal error")
		}
	}()

	return handler(ctx, req)
}
