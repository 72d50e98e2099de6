package world

import (
	"testing"

	"github.com/orangedot/fleetctl/internal/robot"
)

func TestAddRobotRequiresExistingMap(t *testing.T) {
	w := New()
	r := robot.New("r1", "R1", "mobile")
	r.MapID = "missing"
	if err := w.AddRobot(r); err == nil {
		t.Error("expected NotFound for a nonexistent map")
	}
}

func TestAddRobotJoinsMapMembership(t *testing.T) {
	w := New()
	if _, err := w.CreateMap("m1", 5, 5, "Map 1", ""); err != nil {
		t.Fatal(err)
	}
	r := robot.New("r1", "R1", "mobile")
	r.MapID = "m1"
	if err := w.AddRobot(r); err != nil {
		t.Fatal(err)
	}
	on := w.RobotsOnMap("m1")
	if len(on) != 1 || on[0].ID != "r1" {
		t.Errorf("RobotsOnMap(m1) = %v, want [r1]", on)
	}
}

func TestDeleteMapCascadesRobots(t *testing.T) {
	w := New()
	if _, err := w.CreateMap("m1", 5, 5, "", ""); err != nil {
		t.Fatal(err)
	}
	r := robot.New("r1", "R1", "mobile")
	r.MapID = "m1"
	if err := w.AddRobot(r); err != nil {
		t.Fatal(err)
	}

	if err := w.DeleteMap("m1"); err != nil {
		t.Fatal(err)
	}

	if _, err := w.Robot("r1"); err == nil {
		t.Error("robot should have been cascaded away with its map")
	}
	if _, err := w.Grid("m1"); err == nil {
		t.Error("map should no longer exist")
	}
}

func TestDeleteRobotRemovesFromMapMembership(t *testing.T) {
	w := New()
	if _, err := w.CreateMap("m1", 5, 5, "", ""); err != nil {
		t.Fatal(err)
	}
	r := robot.New("r1", "R1", "mobile")
	r.MapID = "m1"
	_ = w.AddRobot(r)

	if err := w.DeleteRobot("r1"); err != nil {
		t.Fatal(err)
	}
	if on := w.RobotsOnMap("m1"); len(on) != 0 {
		t.Errorf("RobotsOnMap(m1) = %v, want empty", on)
	}
}

func TestCreateMapInvalidDimensions(t *testing.T) {
	w := New()
	if _, err := w.CreateMap("m1", 0, 5, "", ""); err == nil {
		t.Error("expected InvalidArgument for width=0")
	}
}
