package client

import (
	"context"

	"github.com/dmitrijs2005/fieldlog/internal/api"
	"github.com/dmitrijs2005/fieldlog/internal/discovery"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/session"
)

// Client is the operator API as the console sees it.
type Client interface {
	Close() error
	SetAccessToken(token string)
	Ping(ctx context.Context) error

	Sync(ctx context.Context, scope discovery.Scope, deploymentID string) (*session.Snapshot, error)
	AdvanceMovement(ctx context.Context) (*session.Snapshot, error)
	RollbackMovement(ctx context.Context) (*session.Snapshot, error)
	LogMovement(ctx context.Context, code, remark string) (*session.Snapshot, error)
	LogTapeEvent(ctx context.Context, req api.LogTapeEventRequest) (*session.Snapshot, error)
	EditTapeEvent(ctx context.Context, req api.EditTapeEventRequest) (*session.Snapshot, error)
	DeleteEvent(ctx context.Context, id string) (*session.Snapshot, error)
	SelectDeployment(ctx context.Context, id string) (*session.Snapshot, error)
	SwitchMode(ctx context.Context, mode models.Mode) (*session.Snapshot, error)
	EditTape(ctx context.Context, req api.EditTapeRequest) (*session.Snapshot, error)

	FootageUploadURL(ctx context.Context, tapeID string) (key, url string, err error)
	ConfirmFootageUpload(ctx context.Context, tapeID string) (*models.Tape, error)
	FootageDownloadURL(ctx context.Context, tapeID string) (string, error)
}
