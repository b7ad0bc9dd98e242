package alarm

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/ironrise/internal/domain/alarm"
	"github.com/oshokin/ironrise/internal/logger"
	"github.com/oshokin/ironrise/internal/service/privileged"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	ScheduleAlarm(ctx context.Context, actor *domain.Actor, isoTime string) (*domain.ScheduledAlarm, error)
	CancelAlarm(ctx context.Context, actor *domain.Actor) error
	PlayAlarm(ctx context.Context, path string) error
	StopAlarm(ctx context.Context)
	Status(ctx context.Context) *domain.Status
}

// Server implements the AlarmControl gRPC API.
type Server struct {
	// service provides the business logic for alarm operations.
	service Service
}

var _ ControlServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// ScheduleAlarm registers a wake at the requested time.
func (s *Server) ScheduleAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if req == nil || strings.TrimSpace(req.GetValue()) == "" {
		return nil, status.Error(codes.InvalidArgument, "wake time is required")
	}

	if _, err := s.service.ScheduleAlarm(ctx, ActorFromIncomingContext(ctx), req.GetValue()); err != nil {
		return nil, toStatusError(ctx, err)
	}

	return new(emptypb.Empty), nil
}

// CancelAlarm removes the pending wake, if any.
func (s *Server) CancelAlarm(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.service.CancelAlarm(ctx, ActorFromIncomingContext(ctx)); err != nil {
		return nil, toStatusError(ctx, err)
	}

	return new(emptypb.Empty), nil
}

// PlayAlarm starts a playback session. An empty path selects the configured default sound.
func (s *Server) PlayAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.service.PlayAlarm(ctx, req.GetValue()); err != nil {
		return nil, toStatusError(ctx, err)
	}

	return new(emptypb.Empty), nil
}

// StopAlarm requests the current playback session to stop.
func (s *Server) StopAlarm(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.service.StopAlarm(ctx)

	return new(emptypb.Empty), nil
}

// GetStatus returns the pending wake and playback state.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return ToProtoStatus(s.service.Status(ctx)), nil
}

// toStatusError maps business errors onto gRPC status codes.
func toStatusError(ctx context.Context, err error) error {
	var (
		commandFailed   *privileged.CommandFailedError
		executionFailed *privileged.ExecutionFailedError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidWakeTime), errors.Is(err, domain.ErrNoSound):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrAlreadyPlaying):
		return status.Error(codes.AlreadyExists, err.Error())
	case privileged.IsUserCanceled(err):
		return status.Error(codes.PermissionDenied, "authentication was canceled")
	case errors.As(err, &commandFailed):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &executionFailed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		logger.ErrorKV(ctx, "Unexpected service error", "error", err)

		return status.Error(codes.Internal, err.Error())
	}
}
