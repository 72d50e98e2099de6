// Package eventsink implements the append-only structured event log that
// Planner and the movement executor write to: one line per event, each
// line independently parseable, prefixed with a millisecond-resolution
// timestamp. Writes are serialized under a single mutex; callers must
// not hold their own locks while producing records.
package eventsink

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Kind identifies an event's first token in the line grammar.
type Kind string

const (
	PlannerStart  Kind = "PLANNER_START"
	Expand        Kind = "EXPAND"
	Push          Kind = "PUSH"
	Path          Kind = "PATH"
	MoveExecuted  Kind = "MOVE_EXECUTED"
	Info          Kind = "INFO"
	Debug         Kind = "DEBUG"
)

// Record is one decoded line of the log, for in-process callers that want
// structured access instead of re-parsing text (external readers still go
// through the Ingress "events" endpoint, out of scope here).
type Record struct {
	Time   time.Time
	Kind   Kind
	Fields []Field
}

// Field is a single key=value pair on a Record.
type Field struct {
	Key   string
	Value string
}

// Sink is the shared, thread-safe event log.
type Sink struct {
	mu      sync.Mutex
	w       io.Writer
	records []Record // in-memory mirror for getEvents
	diag    *slog.Logger
}

// New returns a Sink writing lines to w. diag is the logger Diag returns
// for operational messages outside the event-log grammar; nil selects a
// logger that discards everything. The Sink itself writes only event
// lines and never logs to diag.
func New(w io.Writer, diag *slog.Logger) *Sink {
	if diag == nil {
		diag = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sink{w: w, diag: diag}
}

func fieldString(fields []Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	return b.String()
}

func (s *Sink) write(kind Kind, fields []Field) {
	now := time.Now()
	ts := now.Format("2006-01-02 15:04:05.000")
	line := fmt.Sprintf("%s %s %s\n", ts, kind, fieldString(fields))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Record{Time: now, Kind: kind, Fields: fields})
	if s.w != nil {
		io.WriteString(s.w, line)
		// Flush if the writer buffers (e.g. bufio.Writer). Durability
		// beyond the OS page cache is not a core concern.
		if flusher, ok := s.w.(interface{ Flush() error }); ok {
			_ = flusher.Flush()
		}
	}
}

func quoted(v string) string { return `"` + v + `"` }

func coord(x, y int) string { return fmt.Sprintf("(%d,%d)", x, y) }

// LogPlannerStart emits PLANNER_START for the beginning of one search.
func (s *Sink) LogPlannerStart(robotID, robotName string, startX, startY, goalX, goalY, width, height int) {
	s.write(PlannerStart, []Field{
		{"robotId", quoted(robotID)},
		{"robotName", quoted(robotName)},
		{"start", coord(startX, startY)},
		{"goal", coord(goalX, goalY)},
		{"map", fmt.Sprintf("%dx%d", width, height)},
	})
}

// LogExpand emits EXPAND for a popped node, with its parent (or (-1,-1)
// for the source).
func (s *Sink) LogExpand(robotID string, x, y, cost, parentX, parentY int) {
	s.write(Expand, []Field{
		{"robotId", quoted(robotID)},
		{"x", fmt.Sprint(x)},
		{"y", fmt.Sprint(y)},
		{"cost", fmt.Sprint(cost)},
		{"parent", coord(parentX, parentY)},
	})
}

// LogPush emits PUSH for a successful relaxation.
func (s *Sink) LogPush(robotID string, x, y, cost int) {
	s.write(Push, []Field{
		{"robotId", quoted(robotID)},
		{"x", fmt.Sprint(x)},
		{"y", fmt.Sprint(y)},
		{"cost", fmt.Sprint(cost)},
	})
}

// LogPath emits PATH summarizing a reconstructed path.
func (s *Sink) LogPath(robotID string, size int, startX, startY, endX, endY int) {
	fields := []Field{
		{"robotId", quoted(robotID)},
		{"size", fmt.Sprint(size)},
	}
	if size > 0 {
		fields = append(fields,
			Field{"start", coord(startX, startY)},
			Field{"end", coord(endX, endY)},
		)
	}
	s.write(Path, fields)
}

// LogMoveExecuted emits MOVE_EXECUTED for a single applied grid step.
func (s *Sink) LogMoveExecuted(robotID string, x, y int) {
	s.write(MoveExecuted, []Field{
		{"robotId", quoted(robotID)},
		{"x", fmt.Sprint(x)},
		{"y", fmt.Sprint(y)},
	})
}

// Log emits a freeform INFO/DEBUG line.
func (s *Sink) Log(kind Kind, msg string) {
	s.write(kind, []Field{{"msg", quoted(msg)}})
}

// Events returns a snapshot of every record written since the sink was
// created or last cleared.
func (s *Sink) Events() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Clear truncates the in-memory record snapshot. The backing writer, if
// any, is not truncated by the core: rotation/truncation of the backing
// store is not part of the core.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// Diag returns the diagnostic slog.Logger passed to New (or the
// discarding default), for operational messages outside the event grammar.
func (s *Sink) Diag() *slog.Logger { return s.diag }
