package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/api"
	"github.com/dmitrijs2005/fieldlog/internal/client/client"
	"github.com/dmitrijs2005/fieldlog/internal/filex"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/netx"
	"github.com/dmitrijs2005/fieldlog/internal/session"
)

var errUsage = errors.New("usage")

// getMultiline is an indirection over GetMultiline for tests.
var getMultiline = GetMultiline

func (a *App) usage(text string) error {
	fmt.Fprintln(a.out, "Usage:", text)
	return errUsage
}

func (a *App) report(err error) {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Not authorized, use 'token' to enter a new access token")
	default:
		fmt.Fprintln(a.out, "Error:", err.Error())
	}
}

// apply stores snap and renders it. A rejected operation refetches the
// session so the display never shows a state the server did not accept.
func (a *App) apply(ctx context.Context, snap *session.Snapshot, err error) error {
	if err != nil {
		a.report(err)
		if errors.Is(err, client.ErrRejected) {
			a.refresh(ctx)
		}
		return err
	}
	a.setMode(ModeOnline)
	a.setSnapshot(snap)
	renderSummary(a.out, snap)
	return nil
}

func (a *App) refresh(ctx context.Context) {
	snap, err := a.client.Sync(ctx, a.scope(), "")
	if err != nil {
		a.logger.Warn(ctx, "refresh failed", "error", err)
		return
	}
	a.setSnapshot(snap)
	renderSummary(a.out, snap)
}

func (a *App) ensureSnapshot(ctx context.Context) *session.Snapshot {
	if s := a.snapshot(); s != nil {
		return s
	}
	a.refresh(ctx)
	return a.snapshot()
}

func (a *App) Sync(ctx context.Context, args []string) error {
	deploymentID := ""
	if len(args) > 0 {
		deploymentID = args[0]
	}
	snap, err := a.client.Sync(ctx, a.scope(), deploymentID)
	return a.apply(ctx, snap, err)
}

func (a *App) Deployments(ctx context.Context, _ []string) error {
	renderDeployments(a.out, a.ensureSnapshot(ctx))
	return nil
}

// Select activates a deployment by id or by its 1-based list position.
func (a *App) Select(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("select <deployment-id | #>")
	}

	id := args[0]
	if n, err := strconv.Atoi(strings.TrimPrefix(id, "#")); err == nil {
		s := a.ensureSnapshot(ctx)
		if s == nil || n < 1 || n > len(s.Deployments) {
			fmt.Fprintf(a.out, "No deployment #%d\n", n)
			return errUsage
		}
		id = s.Deployments[n-1].ID
	}

	snap, err := a.client.SelectDeployment(ctx, id)
	return a.apply(ctx, snap, err)
}

func (a *App) SwitchMode(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("mode <diving | rov>")
	}
	m, err := models.ParseMode(args[0])
	if err != nil {
		return a.usage("mode <diving | rov>")
	}
	snap, err := a.client.SwitchMode(ctx, m)
	return a.apply(ctx, snap, err)
}

func (a *App) Advance(ctx context.Context, _ []string) error {
	snap, err := a.client.AdvanceMovement(ctx)
	return a.apply(ctx, snap, err)
}

func (a *App) Rollback(ctx context.Context, _ []string) error {
	snap, err := a.client.RollbackMovement(ctx)
	return a.apply(ctx, snap, err)
}

// Move logs a movement code out of the advance order, e.g. an abort.
func (a *App) Move(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("move <code> [remark]")
	}
	snap, err := a.client.LogMovement(ctx, args[0], strings.Join(args[1:], " "))
	return a.apply(ctx, snap, err)
}

// TapeEvent logs a transport mark: tape <verb> [inspection=<id>] [remark].
func (a *App) TapeEvent(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("tape <start|pause|resume|stop|mark> [inspection=<id>] [remark]")
	}
	kv, rest := parseKV(args[1:])
	snap, err := a.client.LogTapeEvent(ctx, api.LogTapeEventRequest{
		Verb:         args[0],
		InspectionID: kv["inspection"],
		Remark:       strings.Join(rest, " "),
	})
	return a.apply(ctx, snap, err)
}

// Edit changes a tape event: edit <id> [tc=HH:MM:SS] [verb=<verb>] [time=<time>].
func (a *App) Edit(ctx context.Context, args []string) error {
	const text = "edit <event-id> [tc=HH:MM:SS] [verb=<verb>] [time=YYYY-MM-DD HH:MM:SS]"
	if len(args) < 2 {
		return a.usage(text)
	}
	id, err := a.resolveEventID(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	kv, rest := parseKV(args[1:])
	// "time=2024-05-01 10:00:00" arrives split on the space.
	if v, ok := kv["time"]; ok && len(rest) == 1 && strings.Count(rest[0], ":") == 2 {
		kv["time"] = v + " " + rest[0]
	}

	req := api.EditTapeEventRequest{ID: id, Timecode: kv["tc"], Verb: kv["verb"]}
	if req.Timecode == "" {
		req.Timecode = kv["timecode"]
	}
	if v, ok := kv["time"]; ok {
		t, err := parseLocalTime(v)
		if err != nil {
			return a.usage(text)
		}
		req.Time = &t
	}
	if req.Timecode == "" && req.Verb == "" && req.Time == nil {
		return a.usage(text)
	}

	snap, err := a.client.EditTapeEvent(ctx, req)
	return a.apply(ctx, snap, err)
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("delete <event-id>")
	}
	id, err := a.resolveEventID(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	snap, err := a.client.DeleteEvent(ctx, id)
	return a.apply(ctx, snap, err)
}

func (a *App) Tapes(ctx context.Context, _ []string) error {
	renderTapes(a.out, a.ensureSnapshot(ctx))
	return nil
}

// TapeEdit patches a tape: tape-edit <tape-id|.> [number=..] [chapter=N]
// [status=ACTIVE|FULL|CLOSED] [remark=..]. A bare "remark=" prompts for a
// multi-line remark.
func (a *App) TapeEdit(ctx context.Context, args []string) error {
	const text = "tape-edit <tape-id | .> [number=..] [chapter=N] [status=ACTIVE|FULL|CLOSED] [remark=..]"
	if len(args) < 2 {
		return a.usage(text)
	}
	tapeID, err := a.resolveTapeID(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	kv, rest := parseKV(args[1:])
	req := api.EditTapeRequest{TapeID: tapeID}
	if v, ok := kv["number"]; ok {
		req.Number = &v
	}
	if v, ok := kv["chapter"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return a.usage(text)
		}
		req.Chapter = &n
	}
	if v, ok := kv["status"]; ok {
		req.Status = &v
	}
	if v, ok := kv["remark"]; ok {
		v = strings.TrimSpace(strings.Join(append([]string{v}, rest...), " "))
		if v == "" {
			if v, err = getMultiline(a.reader, "Remark", a.out); err != nil {
				return err
			}
		}
		req.Remark = &v
	}
	if req.Number == nil && req.Chapter == nil && req.Status == nil && req.Remark == nil {
		return a.usage(text)
	}

	snap, err := a.client.EditTape(ctx, req)
	return a.apply(ctx, snap, err)
}

func (a *App) Timeline(ctx context.Context, _ []string) error {
	renderTimeline(a.out, a.ensureSnapshot(ctx))
	return nil
}

// Upload sends a footage file to object storage and confirms it.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return a.usage("upload <tape-id | .> <file>")
	}
	tapeID, err := a.resolveTapeID(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	key, url, err := a.client.FootageUploadURL(ctx, tapeID)
	if err != nil {
		a.report(err)
		return err
	}

	fmt.Fprintf(a.out, "Uploading %s (%d bytes)...\n", filepath.Base(args[1]), fi.Size())
	if err := netx.PutPresigned(ctx, url, f, fi.Size()); err != nil {
		a.logger.Error(ctx, "footage upload failed", "tape_id", tapeID, "key", key, "error", err)
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}

	if _, err := a.client.ConfirmFootageUpload(ctx, tapeID); err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintln(a.out, "Footage stored as", key)

	a.refresh(ctx)
	return nil
}

// Download fetches a tape's footage into <dir>/footage, where dir
// defaults to the configured footage directory.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("download <tape-id | .> [dir]")
	}
	tapeID, err := a.resolveTapeID(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	base := a.config.FootageDir
	if len(args) > 1 {
		base = args[1]
	}

	url, err := a.client.FootageDownloadURL(ctx, tapeID)
	if err != nil {
		a.report(err)
		return err
	}

	dir, err := filex.EnsureSubdDir(base, "footage")
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}

	number, chapter := tapeID, 1
	if t := a.findTape(tapeID); t != nil {
		number, chapter = t.Number, t.Chapter
	}
	path := filepath.Join(dir, filex.FootageFileName(number, chapter, ""))

	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}
	defer f.Close()

	n, err := netx.GetPresigned(ctx, url, f)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		_ = os.Remove(path)
		return err
	}

	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", n, path)
	return nil
}

func (a *App) Status(ctx context.Context, _ []string) error {
	sc := a.scope()
	fmt.Fprintf(a.out, "server: %s (%s)\n", a.config.Server, a.mode())
	fmt.Fprintf(a.out, "scope: job pack %s, structure %s, mode %s\n", sc.JobPackID, sc.StructureID, sc.Mode)
	renderSummary(a.out, a.snapshot())
	return nil
}

func (a *App) findTape(id string) *models.Tape {
	s := a.snapshot()
	if s == nil {
		return nil
	}
	for _, t := range s.Tapes {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// resolveTapeID maps "." to the active tape.
func (a *App) resolveTapeID(arg string) (string, error) {
	if arg != "." {
		return arg, nil
	}
	if s := a.snapshot(); s != nil && s.Tape != nil {
		return s.Tape.ID, nil
	}
	return "", errors.New("no active tape")
}

// resolveEventID expands a unique prefix of a timeline source id.
func (a *App) resolveEventID(prefix string) (string, error) {
	s := a.snapshot()
	if s == nil {
		return prefix, nil
	}

	var match string
	for _, e := range s.Timeline {
		if e.SourceID == prefix {
			return prefix, nil
		}
		if strings.HasPrefix(e.SourceID, prefix) {
			if match != "" && match != e.SourceID {
				return "", fmt.Errorf("event id %q is ambiguous", prefix)
			}
			match = e.SourceID
		}
	}
	if match == "" {
		return prefix, nil
	}
	return match, nil
}

func parseLocalTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(timeLayout, s, time.Local)
}
