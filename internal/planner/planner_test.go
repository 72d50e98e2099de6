package planner

import (
	"bytes"
	"testing"

	"github.com/orangedot/fleetctl/internal/eventsink"
	"github.com/orangedot/fleetctl/internal/fleeterr"
	"github.com/orangedot/fleetctl/internal/grid"
	"github.com/orangedot/fleetctl/internal/modules"
	"github.com/orangedot/fleetctl/internal/robot"
)

func countMoves(sink *eventsink.Sink) int {
	n := 0
	for _, r := range sink.Events() {
		if r.Kind == eventsink.MoveExecuted {
			n++
		}
	}
	return n
}

// Trivial path: start == goal.
func TestNavigateTrivialPath(t *testing.T) {
	g, _ := grid.New(5, 5)
	r := robot.New("R1", "R1", "mobile")
	r.X, r.Y = 2, 2

	sink := eventsink.New(&bytes.Buffer{}, nil)
	reg := modules.NewRegistry()

	if err := Navigate(sink, reg, g, r, 2, 2, "T1", nil); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if countMoves(sink) != 0 {
		t.Error("trivial path should produce zero MOVE_EXECUTED events")
	}
	var pathEvents int
	for _, rec := range sink.Events() {
		if rec.Kind == eventsink.Path {
			pathEvents++
		}
	}
	if pathEvents != 1 {
		t.Errorf("expected exactly one PATH event, got %d", pathEvents)
	}
	if r.X != 2 || r.Y != 2 {
		t.Error("robot position should be unchanged")
	}
}

// Straight line across an open grid.
func TestNavigateStraightLine(t *testing.T) {
	g, _ := grid.New(5, 5)
	r := robot.New("R1", "R1", "mobile")
	r.X, r.Y = 0, 0

	sink := eventsink.New(&bytes.Buffer{}, nil)
	reg := modules.NewRegistry()

	if err := Navigate(sink, reg, g, r, 4, 0, "T1", nil); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if got := countMoves(sink); got != 4 {
		t.Errorf("expected 4 MOVE_EXECUTED events, got %d", got)
	}
	if r.X != 4 || r.Y != 0 {
		t.Errorf("final position = (%v,%v), want (4,0)", r.X, r.Y)
	}
}

// Wall detour: a two-cell wall forces a path around it.
func TestNavigateWallDetour(t *testing.T) {
	g, _ := grid.New(5, 3)
	_ = g.Set(2, 0, 1)
	_ = g.Set(2, 1, 1)
	r := robot.New("R1", "R1", "mobile")
	r.X, r.Y = 0, 1

	sink := eventsink.New(&bytes.Buffer{}, nil)
	reg := modules.NewRegistry()

	if err := Navigate(sink, reg, g, r, 4, 1, "T1", nil); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if got := countMoves(sink); got != 6 {
		t.Errorf("expected 6 MOVE_EXECUTED events, got %d", got)
	}
	if r.X != 4 || r.Y != 1 {
		t.Errorf("final position = (%v,%v), want (4,1)", r.X, r.Y)
	}
}

// Fully walled off: unreachable.
func TestNavigateUnreachableNoPath(t *testing.T) {
	g, _ := grid.New(5, 3)
	_ = g.Set(2, 0, 1)
	_ = g.Set(2, 1, 1)
	_ = g.Set(2, 2, 1)
	r := robot.New("R1", "R1", "mobile")
	r.X, r.Y = 0, 1

	sink := eventsink.New(&bytes.Buffer{}, nil)
	reg := modules.NewRegistry()

	err := Navigate(sink, reg, g, r, 4, 1, "T1", nil)
	if err == nil {
		t.Fatal("expected Unreachable error")
	}
	fe, ok := err.(*fleeterr.Error)
	if !ok || fe.Kind != fleeterr.Unreachable || fe.Reason != fleeterr.ReasonNoPath {
		t.Errorf("err = %v, want Unreachable(NoPath)", err)
	}
	if countMoves(sink) != 0 {
		t.Error("unreachable target should produce zero MOVE_EXECUTED events")
	}
	if r.X != 0 || r.Y != 1 {
		t.Error("robot should remain at its start cell")
	}
}

func TestNavigatePreconditionOrder(t *testing.T) {
	g, _ := grid.New(3, 3)
	r := robot.New("R1", "R1", "mobile")

	if err := Navigate(nil, nil, g, r, 10, 10, "", nil); err.(*fleeterr.Error).Reason != fleeterr.ReasonOutOfBounds {
		t.Errorf("out-of-bounds target should fail with ReasonOutOfBounds, got %v", err)
	}

	_ = g.Set(1, 1, 1)
	if err := Navigate(nil, nil, g, r, 1, 1, "", nil); err.(*fleeterr.Error).Reason != fleeterr.ReasonBlocked {
		t.Errorf("blocked target should fail with ReasonBlocked, got %v", err)
	}

	g2, _ := grid.New(3, 3)
	_ = g2.Set(0, 0, 1)
	if err := Navigate(nil, nil, g2, r, 2, 2, "", nil); err.(*fleeterr.Error).Reason != fleeterr.ReasonStartBlocked {
		t.Errorf("blocked start should fail with ReasonStartBlocked, got %v", err)
	}
}

func TestPathDistanceManhattanOnOpenGrid(t *testing.T) {
	g, _ := grid.New(10, 10)
	got := PathDistance(g, 0, 0, 4, 3)
	want := 7 // Manhattan distance
	if got != want {
		t.Errorf("PathDistance = %d, want %d", got, want)
	}
}

func TestPathDistanceSentinelWhenUnreachable(t *testing.T) {
	g, _ := grid.New(3, 3)
	_ = g.Set(1, 0, 1)
	_ = g.Set(1, 1, 1)
	_ = g.Set(1, 2, 1)
	got := PathDistance(g, 0, 0, 2, 0)
	if got < g.Width()*g.Height() {
		t.Errorf("PathDistance = %d, want >= W*H sentinel", got)
	}
}

func TestModuleInvokedAfterArrival(t *testing.T) {
	g, _ := grid.New(3, 3)
	r := robot.New("R1", "R1", "mobile")

	reg := modules.NewRegistry()
	var invokedWith string
	invoked := false
	reg.Register("m.alpha", func(ctx string) {
		invoked = true
		invokedWith = ctx
	})

	sink := eventsink.New(&bytes.Buffer{}, nil)
	if err := Navigate(sink, reg, g, r, 2, 2, "T1", []string{"m.alpha"}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if !invoked {
		t.Fatal("module callback should have been invoked")
	}
	if invokedWith != "T1" {
		t.Errorf("context = %q, want %q", invokedWith, "T1")
	}

	events := sink.Events()
	lastMoveIdx := -1
	for i, rec := range events {
		if rec.Kind == eventsink.MoveExecuted {
			lastMoveIdx = i
		}
	}
	if lastMoveIdx == -1 {
		t.Fatal("expected at least one MOVE_EXECUTED event")
	}
	// The module callback itself isn't logged to the sink, but the
	// contract is that it runs after the last MOVE_EXECUTED; we assert
	// that indirectly by requiring it already ran by the time Navigate
	// returned, which it must have (synchronous call).
}
