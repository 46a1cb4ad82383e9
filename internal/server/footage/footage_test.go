package footage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/fieldlog/internal/common"
	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/registry"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/inspections"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/tapes"
	sc "github.com/dmitrijs2005/fieldlog/internal/server/config"
	"github.com/dmitrijs2005/fieldlog/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testConfig() *sc.Config {
	return &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "footage",
	}
}

// stubPresign replaces the AWS seams for the duration of the test and
// records the keys that were signed.
func stubPresign(t *testing.T) *[]string {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		presignPutObject = origPut
		presignGetObject = origGet
	})

	var signed []string
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		signed = append(signed, "PUT "+*in.Bucket+"/"+*in.Key)
		return &v4.PresignedHTTPRequest{URL: "https://s3/put/" + *in.Key}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		signed = append(signed, "GET "+*in.Bucket+"/"+*in.Key)
		return &v4.PresignedHTTPRequest{URL: "https://s3/get/" + *in.Key}, nil
	}
	return &signed
}

func newService(t *testing.T) (*Service, *models.Tape) {
	t.Helper()
	g := store.NewMemoryGateway()
	tr := tapes.NewGatewayRepository(g)
	reg := registry.New(tr, inspections.NewGatewayRepository(g), logging.Nop())

	tp, err := tr.Create(context.Background(), &models.Tape{DeploymentID: "dep-1", Number: "T-1", CreatedAt: now})
	require.NoError(t, err)

	s := NewService(reg, testConfig(), logging.Nop())
	s.now = func() time.Time { return now }
	return s, tp
}

func TestStorageKey(t *testing.T) {
	key := StorageKey(&models.Tape{ID: "t1", DeploymentID: "dep-1"}, now)
	assert.True(t, strings.HasPrefix(key, "footage/dep-1/2024/05/01/t1-"), key)
}

func TestUploadConfirmDownload(t *testing.T) {
	signed := stubPresign(t)
	s, tp := newService(t)
	ctx := context.Background()

	_, err := s.DownloadURL(ctx, tp.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	key, url, err := s.UploadURL(ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://s3/put/"+key, url)

	got, err := s.tapes.Get(ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, key, got.StorageKey)
	assert.Equal(t, models.UploadPending, got.UploadStatus)

	_, err = s.DownloadURL(ctx, tp.ID)
	require.ErrorIs(t, err, common.ErrorNotFound, "pending footage is not downloadable")

	confirmed, err := s.ConfirmUpload(ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadCompleted, confirmed.UploadStatus)

	dl, err := s.DownloadURL(ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://s3/get/"+key, dl)

	assert.Equal(t, []string{"PUT footage/" + key, "GET footage/" + key}, *signed)
}

func TestConfirmUpload_WithoutUpload(t *testing.T) {
	stubPresign(t)
	s, tp := newService(t)

	_, err := s.ConfirmUpload(context.Background(), tp.ID)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUploadURL_UnknownTape(t *testing.T) {
	stubPresign(t)
	s, _ := newService(t)

	_, _, err := s.UploadURL(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

type stubTapes struct{ tape *models.Tape }

func (s stubTapes) Get(context.Context, string) (*models.Tape, error) { return s.tape, nil }
func (s stubTapes) SetUpload(context.Context, string, string, string) (*models.Tape, error) {
	return nil, errors.New("must not be called")
}

func TestUploadURL_StubTapeIsReadOnly(t *testing.T) {
	stubPresign(t)
	s := NewService(stubTapes{tape: registry.Stub("dep-1", "t9", now)}, testConfig(), logging.Nop())

	_, _, err := s.UploadURL(context.Background(), "t9")
	require.ErrorIs(t, err, common.ErrReadOnly)
}

func TestUploadURL_ConfigLoadError(t *testing.T) {
	stubPresign(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	s, tp := newService(t)

	_, _, err := s.UploadURL(context.Background(), tp.ID)
	require.EqualError(t, err, "load-fail")

	got, err := s.tapes.Get(context.Background(), tp.ID)
	require.NoError(t, err)
	assert.Empty(t, got.StorageKey)
}

func Test_getPresignClient_AppliesSettings(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	s := NewService(stubTapes{}, testConfig(), logging.Nop())
	pc, err := s.getPresignClient(context.Background())
	require.NoError(t, err)
	require.NotNil(t, pc)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}
