package client

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/api"
	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/discovery"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/session"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ Client = (*GRPCClient)(nil)

// CallTimeout bounds every call that has no earlier deadline.
const CallTimeout = 10 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	if token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL; extra dial options (e.g.
// a context dialer in tests) are appended to the defaults.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, reply any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, CallTimeout)
		defer cancel()
	}

	in, err := api.Encode(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := s.conn.Invoke(ctx, api.FullMethod(method), in, out); err != nil {
		return fromStatus(err)
	}
	return api.Decode(out, reply)
}

func (s *GRPCClient) snapshot(ctx context.Context, method string, req any) (*session.Snapshot, error) {
	var reply api.SnapshotReply
	if err := s.invoke(ctx, method, req, &reply); err != nil {
		return nil, err
	}
	return reply.Snapshot, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var reply api.PingReply
	if err := s.invoke(ctx, api.MethodPing, struct{}{}, &reply); err != nil {
		return err
	}
	if reply.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Sync(ctx context.Context, scope discovery.Scope, deploymentID string) (*session.Snapshot, error) {
	return s.snapshot(ctx, api.MethodSync, api.SyncRequest{Scope: scope, DeploymentID: deploymentID})
}

func (s *GRPCClient) AdvanceMovement(ctx context.Context) (*session.Snapshot, error) {
	return s.snapshot(ctx, api.MethodAdvanceMovement, struct{}{})
}

func (s *GRPCClient) RollbackMovement(ctx context.Context) (*session.Snapshot, error) {
	return s.snapshot(ctx, api.MethodRollbackMovement, struct{}{})
}

func (s *GRPCClient) LogMovement(ctx context.Context, code, remark string) (*session.Snapshot, error) {
	return s.snapshot(ctx, api.MethodLogMovement, api.LogMovementRequest{Code: code, Remark: remark})
}

func (s *GRPCClient) LogTapeEvent(ctx context.Context, req api.LogTapeEventRequest) (*session.Snapshot, error) {
	return s.snapshot(ctx, api.MethodLogTapeEvent, req)
}

func (s *GRPCClient) EditTapeEvent(ctx context.Context, req api.EditTapeEventRequest) (*session.Snapshot, error) {
	return s.snapshot(ctx, api.MethodEditTapeEvent, req)
}

func (s *GRPCClient) DeleteEvent(ctx context.Context, id string) (*session.Snapshot, error) {
	return s.snapshot(ctx, api.MethodDeleteEvent, api.IDRequest{ID: id})
}

func (s *GRPCClient) SelectDeployment(ctx context.Context, id string) (*session.Snapshot, error) {
	return s.snapshot(ctx, api.MethodSelectDeployment, api.IDRequest{ID: id})
}

func (s *GRPCClient) SwitchMode(ctx context.Context, mode models.Mode) (*session.Snapshot, error) {
	return s.snapshot(ctx, api.MethodSwitchMode, api.SwitchModeRequest{Mode: mode})
}

func (s *GRPCClient) EditTape(ctx context.Context, req api.EditTapeRequest) (*session.Snapshot, error) {
	return s.snapshot(ctx, api.MethodEditTape, req)
}

func (s *GRPCClient) FootageUploadURL(ctx context.Context, tapeID string) (string, string, error) {
	var reply api.FootageReply
	if err := s.invoke(ctx, api.MethodFootageUpload, api.FootageRequest{TapeID: tapeID}, &reply); err != nil {
		return "", "", err
	}
	return reply.Key, reply.URL, nil
}

func (s *GRPCClient) ConfirmFootageUpload(ctx context.Context, tapeID string) (*models.Tape, error) {
	var reply api.FootageReply
	if err := s.invoke(ctx, api.MethodFootageConfirm, api.FootageRequest{TapeID: tapeID}, &reply); err != nil {
		return nil, err
	}
	return reply.Tape, nil
}

func (s *GRPCClient) FootageDownloadURL(ctx context.Context, tapeID string) (string, error) {
	var reply api.FootageReply
	if err := s.invoke(ctx, api.MethodFootageDownload, api.FootageRequest{TapeID: tapeID}, &reply); err != nil {
		return "", err
	}
	return reply.URL, nil
}
