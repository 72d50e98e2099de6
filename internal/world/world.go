// Package world owns the fleet's maps and robots: occupancy grids keyed
// by map id, robots keyed by robot id, and the robot<->map membership
// that OccupancyGrid/Robot themselves stay unaware of. Robots and grids
// never hold references to each other directly; World resolves the
// membership by id lookup instead.
package world

import (
	"sort"
	"sync"

	"github.com/orangedot/fleetctl/internal/fleeterr"
	"github.com/orangedot/fleetctl/internal/grid"
	"github.com/orangedot/fleetctl/internal/robot"
)

// MapMeta carries the map attributes the core stores but never
// interprets: a display name and the source image URL the out-of-scope
// segmentation preprocessor produced the grid from.
type MapMeta struct {
	ID     string
	Name   string
	MapURL string
}

// mapEntry bundles a grid with its metadata and the ids of robots
// currently on it.
type mapEntry struct {
	meta    MapMeta
	grid    *grid.Grid
	robotID map[string]struct{}
}

// World is the exclusive owner of every Grid and Robot instance.
type World struct {
	mu    sync.Mutex
	maps  map[string]*mapEntry
	robot map[string]*robot.Robot
}

// New returns an empty World.
func New() *World {
	return &World{
		maps:  make(map[string]*mapEntry),
		robot: make(map[string]*robot.Robot),
	}
}

// CreateMap allocates a Grid of (w,h) and registers it under id,
// replacing any prior map with the same id (and cascading its deletion
// first, so robots don't leak). Fails InvalidArgument if w<=0 or h<=0.
func (w *World) CreateMap(id string, width, height int, name, mapURL string) (*grid.Grid, error) {
	g, err := grid.New(width, height)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.maps[id]; exists {
		w.deleteMapLocked(id)
	}
	w.maps[id] = &mapEntry{
		meta:    MapMeta{ID: id, Name: name, MapURL: mapURL},
		grid:    g,
		robotID: make(map[string]struct{}),
	}
	return g, nil
}

// Grid returns the grid for mapID. Fails NotFound if absent.
func (w *World) Grid(mapID string) (*grid.Grid, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.maps[mapID]
	if !ok {
		return nil, fleeterr.New(fleeterr.NotFound, "map not found: "+mapID)
	}
	return e.grid, nil
}

// MapMeta returns the metadata for mapID. Fails NotFound if absent.
func (w *World) MapMeta(mapID string) (MapMeta, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.maps[mapID]
	if !ok {
		return MapMeta{}, fleeterr.New(fleeterr.NotFound, "map not found: "+mapID)
	}
	return e.meta, nil
}

// MapIDs returns every registered map id, sorted.
func (w *World) MapIDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]string, 0, len(w.maps))
	for id := range w.maps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DeleteMap removes the map and cascades: every robot whose MapID equals
// id is also removed from World. Fails NotFound if absent.
func (w *World) DeleteMap(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.maps[id]; !ok {
		return fleeterr.New(fleeterr.NotFound, "map not found: "+id)
	}
	w.deleteMapLocked(id)
	return nil
}

func (w *World) deleteMapLocked(id string) {
	e := w.maps[id]
	if e != nil {
		for rid := range e.robotID {
			delete(w.robot, rid)
		}
	}
	delete(w.maps, id)
}

// AddRobot registers r. If r.MapID is non-empty the referenced map must
// already exist (NotFound otherwise); r is appended to that map's
// membership list. The same robot id cannot be present in two maps.
func (w *World) AddRobot(r *robot.Robot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if r.MapID != "" {
		e, ok := w.maps[r.MapID]
		if !ok {
			return fleeterr.New(fleeterr.NotFound, "map not found: "+r.MapID)
		}
		for mid, me := range w.maps {
			if mid != r.MapID {
				delete(me.robotID, r.ID)
			}
		}
		e.robotID[r.ID] = struct{}{}
	}
	w.robot[r.ID] = r
	return nil
}

// Robot returns the robot registered under id. Fails NotFound if absent.
func (w *World) Robot(id string) (*robot.Robot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.robot[id]
	if !ok {
		return nil, fleeterr.New(fleeterr.NotFound, "robot not found: "+id)
	}
	return r, nil
}

// RobotsOnMap returns the robots currently on mapID, sorted by id.
func (w *World) RobotsOnMap(mapID string) []*robot.Robot {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.maps[mapID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(e.robotID))
	for id := range e.robotID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*robot.Robot, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.robot[id])
	}
	return out
}

// DeleteRobot removes id from World and from its map's membership list.
// Fails NotFound if absent.
func (w *World) DeleteRobot(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.robot[id]
	if !ok {
		return fleeterr.New(fleeterr.NotFound, "robot not found: "+id)
	}
	if r.MapID != "" {
		if e := w.maps[r.MapID]; e != nil {
			delete(e.robotID, id)
		}
	}
	delete(w.robot, id)
	return nil
}
