package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/securedoc/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// codeOf maps a service error to a status code, most specific first.
func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, common.ErrObjectNotFound):
		return codes.FailedPrecondition
	case errors.Is(err, common.ErrCategoryInUse):
		return codes.FailedPrecondition
	case errors.Is(err, common.ErrorValidation):
		return codes.InvalidArgument
	case errors.Is(err, common.ErrorNotFound):
		return codes.NotFound
	case errors.Is(err, common.ErrorForbidden):
		return codes.PermissionDenied
	case errors.Is(err, common.ErrorConflict):
		return codes.AlreadyExists
	case errors.Is(err, common.ErrorStorage):
		return codes.Unavailable
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return codes.Unauthenticated
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// toStatus converts err into a gRPC status error carrying only the public
// message. Internal failures are logged with their full text.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	code := codeOf(err)
	if code == codes.Internal || code == codes.Unavailable {
		s.logger.Error(ctx, "request failed", "method", method, "kind", common.KindOf(err), "error", err)
	} else {
		s.logger.Debug(ctx, "request rejected", "method", method, "kind", common.KindOf(err), "error", err)
	}
	return status.Error(code, common.PublicMessage(err))
}
