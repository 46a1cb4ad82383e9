package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/fieldlog/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps domain errors to gRPC status codes. Errors that already
// carry a status are returned unchanged.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, common.ErrorNotFound):
		code = codes.NotFound
	case errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrInvalidStatus),
		errors.Is(err, common.ErrInvalidMode),
		errors.Is(err, common.ErrUnknownVerb),
		errors.Is(err, common.ErrUnknownCode):
		code = codes.InvalidArgument
	case errors.Is(err, common.ErrReadOnly),
		errors.Is(err, common.ErrNoDeployment),
		errors.Is(err, common.ErrNoTape),
		errors.Is(err, common.ErrUnknownPhase):
		code = codes.FailedPrecondition
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrorUnauthorized):
		code = codes.Unauthenticated
	case errors.Is(err, common.ErrStore),
		errors.Is(err, common.ErrPartialWrite):
		code = codes.Unavailable
	default:
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
