package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/api"
	"github.com/dmitrijs2005/fieldlog/internal/client/client"
	"github.com/dmitrijs2005/fieldlog/internal/client/config"
	"github.com/dmitrijs2005/fieldlog/internal/discovery"
	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	token   string
	snap    *session.Snapshot
	err     error
	pings   int
	pingErr error

	syncScopes []discovery.Scope
	syncIDs    []string
	selected   string
	mode       models.Mode
	moves      []string
	tapeReqs   []api.LogTapeEventRequest
	edits      []api.EditTapeEventRequest
	deleted    []string
	tapeEdits  []api.EditTapeRequest
	confirmed  []string

	uploadURL   string
	downloadURL string
}

func (f *fakeClient) result() (*session.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func (f *fakeClient) Close() error                { return nil }
func (f *fakeClient) SetAccessToken(token string) { f.token = token }
func (f *fakeClient) Ping(ctx context.Context) error {
	f.pings++
	return f.pingErr
}

func (f *fakeClient) Sync(ctx context.Context, scope discovery.Scope, deploymentID string) (*session.Snapshot, error) {
	f.syncScopes = append(f.syncScopes, scope)
	f.syncIDs = append(f.syncIDs, deploymentID)
	return f.snap, nil
}
func (f *fakeClient) AdvanceMovement(ctx context.Context) (*session.Snapshot, error) {
	return f.result()
}
func (f *fakeClient) RollbackMovement(ctx context.Context) (*session.Snapshot, error) {
	return f.result()
}
func (f *fakeClient) LogMovement(ctx context.Context, code, remark string) (*session.Snapshot, error) {
	f.moves = append(f.moves, code+"|"+remark)
	return f.result()
}
func (f *fakeClient) LogTapeEvent(ctx context.Context, req api.LogTapeEventRequest) (*session.Snapshot, error) {
	f.tapeReqs = append(f.tapeReqs, req)
	return f.result()
}
func (f *fakeClient) EditTapeEvent(ctx context.Context, req api.EditTapeEventRequest) (*session.Snapshot, error) {
	f.edits = append(f.edits, req)
	return f.result()
}
func (f *fakeClient) DeleteEvent(ctx context.Context, id string) (*session.Snapshot, error) {
	f.deleted = append(f.deleted, id)
	return f.result()
}
func (f *fakeClient) SelectDeployment(ctx context.Context, id string) (*session.Snapshot, error) {
	f.selected = id
	return f.result()
}
func (f *fakeClient) SwitchMode(ctx context.Context, mode models.Mode) (*session.Snapshot, error) {
	f.mode = mode
	return f.result()
}
func (f *fakeClient) EditTape(ctx context.Context, req api.EditTapeRequest) (*session.Snapshot, error) {
	f.tapeEdits = append(f.tapeEdits, req)
	return f.result()
}
func (f *fakeClient) FootageUploadURL(ctx context.Context, tapeID string) (string, string, error) {
	return "footage/" + tapeID, f.uploadURL, f.err
}
func (f *fakeClient) ConfirmFootageUpload(ctx context.Context, tapeID string) (*models.Tape, error) {
	f.confirmed = append(f.confirmed, tapeID)
	return &models.Tape{ID: tapeID, UploadStatus: models.UploadCompleted}, f.err
}
func (f *fakeClient) FootageDownloadURL(ctx context.Context, tapeID string) (string, error) {
	return f.downloadURL, f.err
}

func testSnapshot() *session.Snapshot {
	dep1 := &models.Deployment{ID: "dep-1", Mode: models.ModeDiving, SubType: models.SubTypeAir, Name: "Jacket", Number: "D1"}
	dep2 := &models.Deployment{ID: "dep-2", Mode: models.ModeDiving, SubType: models.SubTypeBell, Name: "Riser", Number: "D2"}
	tp := &models.Tape{ID: "tape-1", DeploymentID: "dep-1", Number: "VT-0001", Chapter: 1, Status: models.TapeActive}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &session.Snapshot{
		Scope:       discovery.Scope{JobPackID: "jp", StructureID: "s1", Mode: models.ModeDiving},
		Deployments: []*models.Deployment{dep1, dep2},
		Deployment:  dep1,
		Phase:       "LEAVING_SURFACE",
		NextPhase:   "AT_WORKSITE",
		CanAdvance:  true,
		CanRollback: true,
		Tapes:       []*models.Tape{tp},
		Tape:        tp,
		Recording:   "RECORDING",
		Timecode:    "00:05:00",
		Timeline: []models.TimelineEntry{
			{Time: at, Kind: models.TimelineMovement, Label: "LEAVING_SURFACE", SourceID: "mv-0a1b"},
			{Time: at, Kind: models.TimelineTape, Label: "START", SourceID: "te-77aa", Timecode: "00:00:00"},
			{Time: at, Kind: models.TimelineTape, Label: "PAUSE", SourceID: "te-77bb", Timecode: "00:03:00"},
		},
		Status: map[session.View]session.ViewStatus{session.ViewMovement: session.StatusOK},
	}
}

func newTestApp(t *testing.T, fc *fakeClient, input string) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := &config.Config{Server: "bufnet", JobPackID: "jp", StructureID: "s1", Mode: models.ModeDiving}
	return newApp(cfg, fc, logging.Nop(), strings.NewReader(input), &out), &out
}

func TestScope_FollowsConfigThenSnapshot(t *testing.T) {
	a, _ := newTestApp(t, &fakeClient{}, "")
	assert.Equal(t, discovery.Scope{JobPackID: "jp", StructureID: "s1", Mode: models.ModeDiving}, a.scope())

	a.config.Mode = ""
	assert.Equal(t, models.ModeDiving, a.scope().Mode)

	snap := testSnapshot()
	snap.Scope.Mode = models.ModeROV
	a.setSnapshot(snap)
	assert.Equal(t, models.ModeROV, a.scope().Mode)
}

func TestSync_RendersSummary(t *testing.T) {
	fc := &fakeClient{snap: testSnapshot()}
	a, out := newTestApp(t, fc, "")

	require.NoError(t, a.Sync(context.Background(), []string{"dep-1"}))
	assert.Equal(t, []string{"dep-1"}, fc.syncIDs)
	assert.Equal(t, ModeOnline, a.mode())
	assert.Contains(t, out.String(), "D1 Jacket")
	assert.Contains(t, out.String(), "next: AT_WORKSITE")
	assert.Contains(t, out.String(), "VT-0001 ch1  RECORDING  00:05:00")
}

func TestRejectedCommandRefetches(t *testing.T) {
	fc := &fakeClient{snap: testSnapshot(), err: fmt.Errorf("%w: record is read-only", client.ErrRejected)}
	a, out := newTestApp(t, fc, "")

	err := a.Advance(context.Background(), nil)
	assert.ErrorIs(t, err, client.ErrRejected)
	assert.Contains(t, out.String(), "Error: rejected: record is read-only")
	assert.Len(t, fc.syncScopes, 1)
	assert.NotNil(t, a.snapshot())
}

func TestUnavailableSwitchesOffline(t *testing.T) {
	fc := &fakeClient{err: client.ErrUnavailable}
	a, out := newTestApp(t, fc, "")
	a.setMode(ModeOnline)

	err := a.Rollback(context.Background(), nil)
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, ModeOffline, a.mode())
	assert.Contains(t, out.String(), "Server unavailable")
	assert.Empty(t, fc.syncScopes)
}

func TestUnauthorizedHintsAtToken(t *testing.T) {
	fc := &fakeClient{err: client.ErrUnauthorized}
	a, out := newTestApp(t, fc, "")

	_ = a.Move(context.Background(), []string{"ABORT"})
	assert.Contains(t, out.String(), "use 'token'")
}

func TestSelect_ByIndexAndID(t *testing.T) {
	fc := &fakeClient{snap: testSnapshot()}
	a, out := newTestApp(t, fc, "")
	a.setSnapshot(testSnapshot())

	require.NoError(t, a.Select(context.Background(), []string{"#2"}))
	assert.Equal(t, "dep-2", fc.selected)

	require.NoError(t, a.Select(context.Background(), []string{"dep-1"}))
	assert.Equal(t, "dep-1", fc.selected)

	assert.ErrorIs(t, a.Select(context.Background(), []string{"9"}), errUsage)
	assert.ErrorIs(t, a.Select(context.Background(), nil), errUsage)
	assert.Contains(t, out.String(), "No deployment #9")
}

func TestSwitchMode(t *testing.T) {
	fc := &fakeClient{snap: testSnapshot()}
	a, _ := newTestApp(t, fc, "")

	require.NoError(t, a.SwitchMode(context.Background(), []string{"rov"}))
	assert.Equal(t, models.ModeROV, fc.mode)
	assert.ErrorIs(t, a.SwitchMode(context.Background(), []string{"submarine"}), errUsage)
}

func TestMoveAndTapeEvent(t *testing.T) {
	fc := &fakeClient{snap: testSnapshot()}
	a, _ := newTestApp(t, fc, "")

	require.NoError(t, a.Move(context.Background(), []string{"ABORT", "weather", "closing"}))
	assert.Equal(t, []string{"ABORT|weather closing"}, fc.moves)

	require.NoError(t, a.TapeEvent(context.Background(), []string{"mark", "inspection=insp-9", "anode", "depleted"}))
	require.Len(t, fc.tapeReqs, 1)
	assert.Equal(t, api.LogTapeEventRequest{Verb: "mark", InspectionID: "insp-9", Remark: "anode depleted"}, fc.tapeReqs[0])
}

func TestEdit_ResolvesPrefixAndParsesFields(t *testing.T) {
	fc := &fakeClient{snap: testSnapshot()}
	a, out := newTestApp(t, fc, "")
	a.setSnapshot(testSnapshot())

	require.NoError(t, a.Edit(context.Background(), []string{"te-77a", "tc=00:01:00", "verb=pause"}))
	require.Len(t, fc.edits, 1)
	assert.Equal(t, "te-77aa", fc.edits[0].ID)
	assert.Equal(t, "00:01:00", fc.edits[0].Timecode)
	assert.Equal(t, "pause", fc.edits[0].Verb)
	assert.Nil(t, fc.edits[0].Time)

	require.NoError(t, a.Edit(context.Background(), []string{"te-77bb", "time=2024-05-01T10:04:00Z"}))
	require.NotNil(t, fc.edits[1].Time)
	assert.True(t, fc.edits[1].Time.Equal(time.Date(2024, 5, 1, 10, 4, 0, 0, time.UTC)))

	require.NoError(t, a.Edit(context.Background(), []string{"te-77bb", "time=2024-05-01", "10:04:00"}))
	assert.Equal(t, 10, fc.edits[2].Time.Hour())

	err := a.Edit(context.Background(), []string{"te-77", "tc=00:01:00"})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "ambiguous")

	assert.ErrorIs(t, a.Edit(context.Background(), []string{"te-77aa", "color=red"}), errUsage)
	assert.ErrorIs(t, a.Edit(context.Background(), []string{"te-77aa", "time=yesterday"}), errUsage)
}

func TestDelete(t *testing.T) {
	fc := &fakeClient{snap: testSnapshot()}
	a, _ := newTestApp(t, fc, "")
	a.setSnapshot(testSnapshot())

	require.NoError(t, a.Delete(context.Background(), []string{"mv-0"}))
	assert.Equal(t, []string{"mv-0a1b"}, fc.deleted)

	require.NoError(t, a.Delete(context.Background(), []string{"unknown-id"}))
	assert.Equal(t, "unknown-id", fc.deleted[1])
}

func TestTapeEdit(t *testing.T) {
	fc := &fakeClient{snap: testSnapshot()}
	a, _ := newTestApp(t, fc, "first line\nsecond line\n\n")
	a.setSnapshot(testSnapshot())

	require.NoError(t, a.TapeEdit(context.Background(), []string{".", "chapter=3", "status=full"}))
	require.Len(t, fc.tapeEdits, 1)
	req := fc.tapeEdits[0]
	assert.Equal(t, "tape-1", req.TapeID)
	require.NotNil(t, req.Chapter)
	assert.Equal(t, 3, *req.Chapter)
	require.NotNil(t, req.Status)
	assert.Equal(t, "full", *req.Status)
	assert.Nil(t, req.Number)

	require.NoError(t, a.TapeEdit(context.Background(), []string{"tape-1", "remark=north", "face"}))
	assert.Equal(t, "north face", *fc.tapeEdits[1].Remark)

	require.NoError(t, a.TapeEdit(context.Background(), []string{"tape-1", "remark="}))
	assert.Equal(t, "first line\nsecond line", *fc.tapeEdits[2].Remark)

	assert.ErrorIs(t, a.TapeEdit(context.Background(), []string{"tape-1", "chapter=two"}), errUsage)
	assert.ErrorIs(t, a.TapeEdit(context.Background(), []string{"tape-1"}), errUsage)
}

func TestTapeEdit_NoActiveTape(t *testing.T) {
	a, out := newTestApp(t, &fakeClient{}, "")

	err := a.TapeEdit(context.Background(), []string{".", "chapter=2"})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "no active tape")
}

func TestViews(t *testing.T) {
	fc := &fakeClient{snap: testSnapshot()}
	a, out := newTestApp(t, fc, "")

	require.NoError(t, a.Deployments(context.Background(), nil))
	assert.Len(t, fc.syncScopes, 1, "first view fetches the snapshot")
	assert.Contains(t, out.String(), "Riser")

	require.NoError(t, a.Timeline(context.Background(), nil))
	assert.Contains(t, out.String(), "te-77bb")
	assert.Contains(t, out.String(), "00:03:00")

	require.NoError(t, a.Tapes(context.Background(), nil))
	assert.Contains(t, out.String(), "VT-0001*")

	require.NoError(t, a.Status(context.Background(), nil))
	assert.Contains(t, out.String(), "scope: job pack jp, structure s1, mode DIVING")
	assert.Len(t, fc.syncScopes, 1)
}

func TestUploadAndDownload(t *testing.T) {
	var stored []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			buf := new(bytes.Buffer)
			_, _ = buf.ReadFrom(r.Body)
			stored = buf.Bytes()
		case http.MethodGet:
			_, _ = w.Write(stored)
		}
	}))
	defer ts.Close()

	fc := &fakeClient{snap: testSnapshot(), uploadURL: ts.URL + "/put", downloadURL: ts.URL + "/get"}
	a, out := newTestApp(t, fc, "")
	a.setSnapshot(testSnapshot())

	dir := t.TempDir()
	src := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(src, []byte("footage"), 0o600))

	require.NoError(t, a.Upload(context.Background(), []string{".", src}))
	assert.Equal(t, []byte("footage"), stored)
	assert.Equal(t, []string{"tape-1"}, fc.confirmed)
	assert.Contains(t, out.String(), "Footage stored as footage/tape-1")

	require.NoError(t, a.Download(context.Background(), []string{"tape-1", dir}))
	got, err := os.ReadFile(filepath.Join(dir, "footage", "VT-0001_ch01"))
	require.NoError(t, err)
	assert.Equal(t, []byte("footage"), got)

	a.config.FootageDir = t.TempDir()
	require.NoError(t, a.Download(context.Background(), []string{"tape-1"}))
	got, err = os.ReadFile(filepath.Join(a.config.FootageDir, "footage", "VT-0001_ch01"))
	require.NoError(t, err)
	assert.Equal(t, []byte("footage"), got)
}

func TestUpload_Errors(t *testing.T) {
	fc := &fakeClient{snap: testSnapshot()}
	a, _ := newTestApp(t, fc, "")

	assert.ErrorIs(t, a.Upload(context.Background(), []string{"tape-1"}), errUsage)
	assert.Error(t, a.Upload(context.Background(), []string{"tape-1", filepath.Join(t.TempDir(), "missing")}))

	src := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o600))
	fc.err = fmt.Errorf("%w: record is read-only", client.ErrRejected)
	assert.ErrorIs(t, a.Upload(context.Background(), []string{"tape-1", src}), client.ErrRejected)
	assert.Empty(t, fc.confirmed)
}

func TestAuthenticate(t *testing.T) {
	fc := &fakeClient{}
	a, _ := newTestApp(t, fc, "")
	a.config.AccessToken = " configured "
	require.NoError(t, a.Authenticate(context.Background()))
	assert.Equal(t, "configured", fc.token)

	orig := getSecret
	t.Cleanup(func() { getSecret = orig })

	getSecret = func(*bufio.Reader, string, io.Writer) ([]byte, error) { return []byte("prompted\n"), nil }
	a.config.AccessToken = ""
	require.NoError(t, a.Authenticate(context.Background()))
	assert.Equal(t, "prompted", fc.token)

	getSecret = func(*bufio.Reader, string, io.Writer) ([]byte, error) { return []byte("  "), nil }
	assert.ErrorIs(t, a.Token(context.Background(), nil), errNoToken)

	getSecret = func(*bufio.Reader, string, io.Writer) ([]byte, error) { return nil, errors.New("tty") }
	assert.Error(t, a.Token(context.Background(), nil))
	assert.Equal(t, "prompted", fc.token)
}

func TestAuthenticate_TokenFile(t *testing.T) {
	fc := &fakeClient{}
	a, _ := newTestApp(t, fc, "")

	a.config.TokenFile = filepath.Join(t.TempDir(), "operator.jwt")
	require.NoError(t, os.WriteFile(a.config.TokenFile, []byte("eyJ.from.file\n"), 0o600))
	require.NoError(t, a.Authenticate(context.Background()))
	assert.Equal(t, "eyJ.from.file", fc.token)

	fc.token = ""
	a.config.TokenFile = filepath.Join(t.TempDir(), "missing.jwt")
	require.Error(t, a.Authenticate(context.Background()))
	assert.Empty(t, fc.token)
}

func TestGetStatus(t *testing.T) {
	a, _ := newTestApp(t, &fakeClient{}, "")
	assert.Equal(t, "", a.getStatus())

	a.setMode(ModeOnline)
	assert.Equal(t, "(online)", a.getStatus())

	a.setSnapshot(testSnapshot())
	assert.Equal(t, "(D1 Jacket online)", a.getStatus())
}

func TestStartOnlineStatusWatcher(t *testing.T) {
	fc := &fakeClient{}
	a, _ := newTestApp(t, fc, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond, time.Second)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.mode() == ModeOnline }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestRenderSummary_NoDeploymentAndNotices(t *testing.T) {
	var out bytes.Buffer
	renderSummary(&out, nil)
	assert.Contains(t, out.String(), "run 'sync'")

	out.Reset()
	renderSummary(&out, &session.Snapshot{
		Scope:  discovery.Scope{Mode: models.ModeROV},
		Status: map[session.View]session.ViewStatus{session.ViewTape: session.StatusSaveError, session.ViewMovement: session.StatusOK},
		Notices: []session.Notice{{View: session.ViewTape, Message: "save tape event failed"}},
	})
	assert.Contains(t, out.String(), "[ROV] no active deployment (0 available)")
	assert.Contains(t, out.String(), "! tape: save tape event failed")
	assert.Contains(t, out.String(), "status: movement=ok tape=save_error")
}
