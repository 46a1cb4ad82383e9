package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/api"
	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/registry"
	"github.com/dmitrijs2005/fieldlog/internal/session"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func decode(in *structpb.Struct, v any) error {
	if err := api.Decode(in, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func (s *GRPCServer) encode(ctx context.Context, v any) (*structpb.Struct, error) {
	out, err := api.Encode(v)
	if err != nil {
		s.logger.Error(ctx, "encode reply", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// reply encodes the snapshot, or maps err when the operation was rejected.
func (s *GRPCServer) reply(ctx context.Context, action string, snap *session.Snapshot, err error) (*structpb.Struct, error) {
	if err != nil {
		s.logger.Info(ctx, "operation rejected", "action", action, "error", err)
		return nil, toStatus(err)
	}
	return s.encode(ctx, api.SnapshotReply{Snapshot: snap})
}

func (s *GRPCServer) session(ctx context.Context) (*session.Session, error) {
	operatorID, err := operatorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(operatorID), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.encode(ctx, api.PingReply{Status: "OK", Time: time.Now().UTC()})
}

func (s *GRPCServer) Sync(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	operatorID, err := operatorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req api.SyncRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.Scope.Mode != "" {
		mode, err := models.ParseMode(string(req.Scope.Mode))
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		req.Scope.Mode = mode
	}

	sess := s.sessions.Open(operatorID, session.Context{Scope: req.Scope, DeploymentID: req.DeploymentID})
	if req.Scope.Mode != "" && sess.Context().Scope.Mode != req.Scope.Mode {
		snap, err := sess.SwitchMode(ctx, req.Scope.Mode)
		if err != nil {
			return s.reply(ctx, "sync", snap, err)
		}
	}

	snap := sess.Sync(ctx)
	if req.DeploymentID != "" && sess.Context().DeploymentID != req.DeploymentID {
		snap, err = sess.SelectDeployment(ctx, req.DeploymentID)
	}
	s.logger.Debug(ctx, "synced", "operator", operatorID, "tier", snap.Tier, "ok", snap.OK())
	return s.reply(ctx, "sync", snap, err)
}

func (s *GRPCServer) AdvanceMovement(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := sess.AdvanceMovement(ctx)
	return s.reply(ctx, "advance movement", snap, err)
}

func (s *GRPCServer) RollbackMovement(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := sess.RollbackMovement(ctx)
	return s.reply(ctx, "roll back movement", snap, err)
}

func (s *GRPCServer) LogMovement(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	var req api.LogMovementRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	snap, err := sess.LogMovement(ctx, req.Code, req.Remark)
	return s.reply(ctx, "log movement", snap, err)
}

func (s *GRPCServer) LogTapeEvent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	var req api.LogTapeEventRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	snap, err := sess.LogTapeEvent(ctx, session.TapeEventRequest{
		Verb:         req.Verb,
		InspectionID: req.InspectionID,
		Remark:       req.Remark,
	})
	return s.reply(ctx, "log tape event", snap, err)
}

func (s *GRPCServer) EditTapeEvent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	var req api.EditTapeEventRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	snap, err := sess.EditTapeEvent(ctx, req.ID, session.TapeEventEdit{
		Timecode: req.Timecode,
		Verb:     req.Verb,
		Time:     req.Time,
	})
	return s.reply(ctx, "edit tape event", snap, err)
}

func (s *GRPCServer) DeleteEvent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	var req api.IDRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	snap, err := sess.DeleteEvent(ctx, req.ID)
	return s.reply(ctx, "delete event", snap, err)
}

func (s *GRPCServer) SelectDeployment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	var req api.IDRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	snap, err := sess.SelectDeployment(ctx, req.ID)
	return s.reply(ctx, "select deployment", snap, err)
}

func (s *GRPCServer) SwitchMode(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	var req api.SwitchModeRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	mode, err := models.ParseMode(string(req.Mode))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	snap, err := sess.SwitchMode(ctx, mode)
	return s.reply(ctx, "switch mode", snap, err)
}

func (s *GRPCServer) EditTape(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	var req api.EditTapeRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	snap, err := sess.EditTape(ctx, req.TapeID, registry.TapePatch{
		Number:  req.Number,
		Chapter: req.Chapter,
		Remark:  req.Remark,
		Status:  req.Status,
	})
	return s.reply(ctx, "edit tape", snap, err)
}

func (s *GRPCServer) footageRequest(ctx context.Context, in *structpb.Struct) (string, error) {
	if _, err := operatorFromContext(ctx); err != nil {
		return "", err
	}
	if s.footage == nil {
		return "", status.Error(codes.Unimplemented, "footage storage is not configured")
	}
	var req api.FootageRequest
	if err := decode(in, &req); err != nil {
		return "", err
	}
	if req.TapeID == "" {
		return "", toStatus(common.ErrNoTape)
	}
	return req.TapeID, nil
}

func (s *GRPCServer) FootageUploadURL(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	tapeID, err := s.footageRequest(ctx, in)
	if err != nil {
		return nil, err
	}
	key, url, err := s.footage.UploadURL(ctx, tapeID)
	if err != nil {
		s.logger.Error(ctx, "footage upload url", "tape", tapeID, "error", err)
		return nil, toStatus(err)
	}
	return s.encode(ctx, api.FootageReply{Key: key, URL: url})
}

func (s *GRPCServer) ConfirmFootageUpload(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	tapeID, err := s.footageRequest(ctx, in)
	if err != nil {
		return nil, err
	}
	t, err := s.footage.ConfirmUpload(ctx, tapeID)
	if err != nil {
		s.logger.Error(ctx, "confirm footage upload", "tape", tapeID, "error", err)
		return nil, toStatus(err)
	}
	return s.encode(ctx, api.FootageReply{Key: t.StorageKey, Tape: t})
}

func (s *GRPCServer) FootageDownloadURL(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	tapeID, err := s.footageRequest(ctx, in)
	if err != nil {
		return nil, err
	}
	url, err := s.footage.DownloadURL(ctx, tapeID)
	if err != nil {
		return nil, toStatus(err)
	}
	return s.encode(ctx, api.FootageReply{URL: url})
}
