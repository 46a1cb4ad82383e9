// Package footage hands out presigned S3 URLs for the video footage of a
// tape and tracks its upload state on the tape record.
package footage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	sc "github.com/dmitrijs2005/fieldlog/internal/server/config"
	"github.com/google/uuid"
)

// URLValidity is the lifetime of every presigned URL.
const URLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// TapeStore is the part of the tape registry the service needs.
type TapeStore interface {
	Get(ctx context.Context, tapeID string) (*models.Tape, error)
	SetUpload(ctx context.Context, tapeID, storageKey, status string) (*models.Tape, error)
}

type Service struct {
	tapes  TapeStore
	config *sc.Config
	logger logging.Logger
	now    func() time.Time
}

func NewService(tapes TapeStore, config *sc.Config, logger logging.Logger) *Service {
	return &Service{
		tapes:  tapes,
		config: config,
		logger: logger.With("module", "footage"),
		now:    time.Now,
	}
}

// StorageKey builds a fresh object key for the footage of t.
func StorageKey(t *models.Tape, at time.Time) string {
	d := at.UTC()
	return fmt.Sprintf("footage/%s/%04d/%02d/%02d/%s-%s", t.DeploymentID, d.Year(), d.Month(), d.Day(), t.ID, uuid.NewString())
}

func (s *Service) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// UploadURL assigns a new storage key to the tape, marks the upload pending
// and returns a presigned PUT URL for it.
func (s *Service) UploadURL(ctx context.Context, tapeID string) (string, string, error) {
	t, err := s.writableTape(ctx, tapeID)
	if err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := StorageKey(t, s.now())

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(URLValidity))
	if err != nil {
		return "", "", err
	}

	if _, err := s.tapes.SetUpload(ctx, t.ID, key, models.UploadPending); err != nil {
		return "", "", err
	}

	s.logger.Info(ctx, "footage upload url issued", "tape", t.ID, "key", key)
	return key, req.URL, nil
}

// ConfirmUpload marks the pending footage of the tape as uploaded.
func (s *Service) ConfirmUpload(ctx context.Context, tapeID string) (*models.Tape, error) {
	t, err := s.writableTape(ctx, tapeID)
	if err != nil {
		return nil, err
	}
	if t.StorageKey == "" {
		return nil, fmt.Errorf("%w: tape %s has no footage upload", common.ErrInvalidInput, t.ID)
	}
	if t.UploadStatus == models.UploadCompleted {
		return t, nil
	}
	return s.tapes.SetUpload(ctx, t.ID, t.StorageKey, models.UploadCompleted)
}

// DownloadURL returns a presigned GET URL for uploaded footage.
func (s *Service) DownloadURL(ctx context.Context, tapeID string) (string, error) {
	t, err := s.tapes.Get(ctx, tapeID)
	if err != nil {
		return "", err
	}
	if t.StorageKey == "" || t.UploadStatus != models.UploadCompleted {
		return "", fmt.Errorf("footage of tape %s: %w", t.ID, common.ErrorNotFound)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := t.StorageKey

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(URLValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (s *Service) writableTape(ctx context.Context, tapeID string) (*models.Tape, error) {
	t, err := s.tapes.Get(ctx, tapeID)
	if err != nil {
		return nil, err
	}
	if t.Stub {
		return nil, fmt.Errorf("tape %s: %w", t.ID, common.ErrReadOnly)
	}
	return t, nil
}
