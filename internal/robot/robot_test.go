package robot

import (
	"testing"

	"github.com/orangedot/fleetctl/internal/grid"
)

func newGrid(t *testing.T, w, h int) *grid.Grid {
	g, err := grid.New(w, h)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGridPositionRounds(t *testing.T) {
	r := New("r1", "R1", "mobile")
	r.X, r.Y = 2.4, 2.6
	gx, gy := r.GridPosition()
	if gx != 2 || gy != 3 {
		t.Errorf("GridPosition() = (%d,%d), want (2,3)", gx, gy)
	}
}

func TestCanMoveToRejectsBlockedAndOutOfBounds(t *testing.T) {
	g := newGrid(t, 5, 5)
	_ = g.Set(2, 2, 1)
	r := New("r1", "R1", "mobile")

	if r.CanMoveTo(2, 2, g) {
		t.Error("should not be able to move onto a blocked cell")
	}
	if r.CanMoveTo(10, 10, g) {
		t.Error("should not be able to move out of bounds")
	}
	if !r.CanMoveTo(1, 1, g) {
		t.Error("should be able to move onto an accessible cell")
	}
}

func TestCanMoveToRejectsBeyondMaxDistance(t *testing.T) {
	g := newGrid(t, 10, 10)
	r := New("r1", "R1", "mobile")
	r.X, r.Y = 0, 0
	r.MaxDistance = 3

	if r.CanMoveTo(5, 0, g) {
		t.Error("target beyond maxDistance should be rejected")
	}
	if !r.CanMoveTo(2, 0, g) {
		t.Error("target within maxDistance should be accepted")
	}
}

func TestMoveToLeavesPoseUnchangedOnFailure(t *testing.T) {
	g := newGrid(t, 5, 5)
	_ = g.Set(4, 4, 1)
	r := New("r1", "R1", "mobile")
	r.X, r.Y = 0, 0

	if r.MoveTo(4, 4, g) {
		t.Fatal("move onto blocked cell should fail")
	}
	if r.X != 0 || r.Y != 0 {
		t.Errorf("pose changed on failed move: (%v,%v)", r.X, r.Y)
	}
}

func TestMoveToGridCommitsIntegerPose(t *testing.T) {
	g := newGrid(t, 5, 5)
	r := New("r1", "R1", "mobile")
	if !r.MoveToGrid(3, 1, g) {
		t.Fatal("move should succeed")
	}
	if r.X != 3 || r.Y != 1 {
		t.Errorf("pose = (%v,%v), want (3,1)", r.X, r.Y)
	}
}

func TestMoveInDirectionUsesUnitSteps(t *testing.T) {
	g := newGrid(t, 5, 5)
	r := New("r1", "R1", "mobile")
	r.X, r.Y = 2, 2
	if !r.MoveInDirection(East, g) {
		t.Fatal("move east should succeed")
	}
	if r.X != 3 || r.Y != 2 {
		t.Errorf("pose = (%v,%v), want (3,2)", r.X, r.Y)
	}
}

func TestNewGeneratesIDWhenEmpty(t *testing.T) {
	r := New("", "R1", "mobile")
	if r.ID == "" {
		t.Error("expected a generated id")
	}
}
