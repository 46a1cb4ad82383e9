package client

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRejected     = errors.New("rejected")
)

// RejectedError is an operation the server refused: bad input, a read-only
// record or an unknown id. It matches ErrRejected.
type RejectedError struct {
	Code    codes.Code
	Message string
}

func (e *RejectedError) Error() string {
	return "rejected: " + e.Message
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// fromStatus maps a gRPC status onto the console's error vocabulary.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument, codes.FailedPrecondition, codes.NotFound:
		return &RejectedError{Code: st.Code(), Message: st.Message()}
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
