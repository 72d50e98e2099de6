// Package config loads optional YAML bootstrap documents describing
// initial maps, robots, and module enablement. The core never requires a
// config file: the Ingress operations remain the primary way to
// populate a ControlPlane. This package exists only to seed a
// ControlPlane ahead of time (demo tooling, tests, offline
// benchmarking).
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orangedot/fleetctl/internal/fleet"
	"github.com/orangedot/fleetctl/internal/robot"
)

// MapSpec describes one map to create at bootstrap.
type MapSpec struct {
	ID     string `yaml:"id"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Name   string `yaml:"name"`
	MapURL string `yaml:"mapUrl"`
	Blocked [][2]int `yaml:"blocked"`
}

// RobotSpec describes one robot to add at bootstrap.
type RobotSpec struct {
	ID    string  `yaml:"id"`
	Name  string  `yaml:"name"`
	Kind  string  `yaml:"kind"`
	MapID string  `yaml:"mapId"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Speed float64 `yaml:"speed"`
}

// ModulesSpec controls administrative enablement at bootstrap.
type ModulesSpec struct {
	Enabled []string `yaml:"enabled"`
}

// Document is the top-level bootstrap schema.
type Document struct {
	Maps    []MapSpec   `yaml:"maps"`
	Robots  []RobotSpec `yaml:"robots"`
	Modules ModulesSpec `yaml:"modules"`
}

// Load parses a YAML document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Apply creates every map and robot in doc against cp, and marks every
// module in doc.Modules.Enabled as administratively enabled. Map
// creation failures abort immediately; a failing robot upsert is
// reported but does not prevent the rest of the document from applying.
func (doc *Document) Apply(cp *fleet.ControlPlane) error {
	for _, m := range doc.Maps {
		if err := cp.CreateMap(m.ID, m.Width, m.Height, m.Name, m.MapURL); err != nil {
			return err
		}
		if len(m.Blocked) > 0 {
			g, err := cp.World.Grid(m.ID)
			if err != nil {
				return err
			}
			for _, cell := range m.Blocked {
				if err := g.Set(cell[0], cell[1], 1); err != nil {
					return err
				}
			}
		}
	}

	var firstErr error
	for _, rs := range doc.Robots {
		r := robot.New(rs.ID, rs.Name, rs.Kind)
		r.MapID = rs.MapID
		r.X, r.Y = rs.X, rs.Y
		if rs.Speed > 0 {
			r.Speed = rs.Speed
		}
		if err := cp.UpsertRobot(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, id := range doc.Modules.Enabled {
		cp.SetEnabled(id, true)
	}

	return firstErr
}
