package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/orangedot/fleetctl/internal/fleet"
)

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bootstrap.yaml")
	content := `
maps:
  - id: m1
    width: 5
    height: 5
    name: Warehouse
robots:
  - id: r1
    name: R1
    kind: mobile
    mapId: m1
    x: 1
    y: 1
modules:
  enabled: [m.paint]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Maps) != 1 || doc.Maps[0].ID != "m1" {
		t.Errorf("Maps = %v", doc.Maps)
	}
	if len(doc.Robots) != 1 || doc.Robots[0].ID != "r1" {
		t.Errorf("Robots = %v", doc.Robots)
	}
	if len(doc.Modules.Enabled) != 1 || doc.Modules.Enabled[0] != "m.paint" {
		t.Errorf("Modules.Enabled = %v", doc.Modules.Enabled)
	}
}

func TestApplyCreatesMapsRobotsAndBlockedCells(t *testing.T) {
	doc := &Document{
		Maps: []MapSpec{
			{ID: "m1", Width: 5, Height: 5, Name: "Warehouse", Blocked: [][2]int{{1, 1}}},
		},
		Robots: []RobotSpec{
			{ID: "r1", Name: "R1", Kind: "mobile", MapID: "m1", X: 0, Y: 0, Speed: 2},
		},
		Modules: ModulesSpec{Enabled: []string{"m.paint"}},
	}

	cp := fleet.New(&bytes.Buffer{}, nil)
	if err := doc.Apply(cp); err != nil {
		t.Fatal(err)
	}

	g, err := cp.World.Grid("m1")
	if err != nil {
		t.Fatal(err)
	}
	if g.IsAccessible(1, 1) {
		t.Error("blocked cell (1,1) should be inaccessible after Apply")
	}

	r, err := cp.World.Robot("r1")
	if err != nil {
		t.Fatal(err)
	}
	if r.Speed != 2 {
		t.Errorf("Speed = %v, want 2", r.Speed)
	}

	if !cp.Host.IsEnabled("m.paint") {
		t.Error("m.paint should be administratively enabled after Apply")
	}
}

func TestApplyAbortsImmediatelyOnMapCreationFailure(t *testing.T) {
	doc := &Document{
		Maps: []MapSpec{
			{ID: "bad", Width: 0, Height: 5},
			{ID: "never", Width: 5, Height: 5},
		},
	}
	cp := fleet.New(&bytes.Buffer{}, nil)
	if err := doc.Apply(cp); err == nil {
		t.Fatal("expected an error from an invalid map spec")
	}
	if _, err := cp.World.Grid("never"); err == nil {
		t.Error("map creation should have aborted before reaching the second map")
	}
}

func TestApplyContinuesPastFailingRobotUpserts(t *testing.T) {
	doc := &Document{
		Maps: []MapSpec{{ID: "m1", Width: 5, Height: 5}},
		Robots: []RobotSpec{
			{ID: "bad", MapID: "missing-map"},
			{ID: "good", MapID: "m1"},
		},
	}
	cp := fleet.New(&bytes.Buffer{}, nil)
	if err := doc.Apply(cp); err == nil {
		t.Error("expected the first robot's failure to be reported")
	}
	if _, err := cp.World.Robot("good"); err != nil {
		t.Error("the second robot should still have been added despite the first failing")
	}
}
