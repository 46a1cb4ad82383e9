package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/fieldlog/internal/session"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const timeLayout = "2006-01-02 15:04:05"

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatElapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func flag(b bool, s string) string {
	if b {
		return s
	}
	return ""
}

// renderSummary prints the header block shown after every command.
func renderSummary(w io.Writer, s *session.Snapshot) {
	if s == nil {
		fmt.Fprintln(w, "no snapshot yet, run 'sync'")
		return
	}

	if s.Deployment == nil {
		fmt.Fprintf(w, "[%s] no active deployment (%d available)\n", s.Scope.Mode, len(s.Deployments))
	} else {
		d := s.Deployment
		fmt.Fprintf(w, "[%s] %s %s%s\n", s.Scope.Mode, d.DisplayName(), d.SubType, flag(d.Placeholder, " (history only)"))

		phase := s.Phase
		if phase == "" {
			phase = "-"
		}
		next := s.NextPhase
		if !s.CanAdvance || next == "" {
			next = "-"
		}
		fmt.Fprintf(w, "  phase: %s  next: %s  rollback: %t\n", phase, next, s.CanRollback)
		if s.InField {
			fmt.Fprintf(w, "  in field: %s\n", formatElapsed(s.ElapsedInField))
		}

		tapeNo := "-"
		if s.Tape != nil {
			tapeNo = fmt.Sprintf("%s ch%d", s.Tape.Number, s.Tape.Chapter)
		}
		fmt.Fprintf(w, "  tape: %s  %s  %s\n", tapeNo, s.Recording, s.Timecode)
	}

	for _, n := range s.Notices {
		fmt.Fprintf(w, "  ! %s: %s\n", n.View, n.Message)
	}
	if !s.OK() {
		fmt.Fprintf(w, "  status: %s\n", formatStatus(s.Status))
	}
}

func formatStatus(st map[session.View]session.ViewStatus) string {
	parts := make([]string, 0, len(st))
	for v, s := range st {
		parts = append(parts, string(v)+"="+string(s))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

func renderDeployments(w io.Writer, s *session.Snapshot) {
	if s == nil || len(s.Deployments) == 0 {
		fmt.Fprintln(w, "No deployments.")
		return
	}

	rows := make([][]string, 0, len(s.Deployments))
	for i, d := range s.Deployments {
		active := ""
		if s.Deployment != nil && s.Deployment.ID == d.ID {
			active = "*"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1) + active,
			d.ID,
			d.DisplayName(),
			d.SubType,
			string(d.Status),
			flag(d.Placeholder, "yes"),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "ID", "Name", "Type", "Status", "History"},
		rows,
		[]columnAlignment{alignRight},
	))
}

func renderTimeline(w io.Writer, s *session.Snapshot) {
	if s == nil || len(s.Timeline) == 0 {
		fmt.Fprintln(w, "Timeline is empty.")
		return
	}

	rows := make([][]string, 0, len(s.Timeline))
	for _, e := range s.Timeline {
		label := e.Label
		if e.Pending {
			label += " (pending)"
		}
		rows = append(rows, []string{
			formatTime(e.Time),
			string(e.Kind),
			label,
			e.Timecode,
			e.InspectionID,
			e.Remark,
			e.SourceID,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Time", "Kind", "Event", "TC", "Inspection", "Remark", "ID"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	))
}

func renderTapes(w io.Writer, s *session.Snapshot) {
	if s == nil || len(s.Tapes) == 0 {
		fmt.Fprintln(w, "No tapes.")
		return
	}

	rows := make([][]string, 0, len(s.Tapes))
	for _, t := range s.Tapes {
		active := ""
		if s.Tape != nil && s.Tape.ID == t.ID {
			active = "*"
		}
		upload := t.UploadStatus
		if upload == "" {
			upload = "-"
		}
		rows = append(rows, []string{
			t.Number + active,
			strconv.Itoa(t.Chapter),
			string(t.Status),
			upload,
			flag(t.Stub, "yes"),
			t.Remark,
			t.ID,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Number", "Ch", "Status", "Footage", "Read-only", "Remark", "ID"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
}
