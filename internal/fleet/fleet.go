// Package fleet is the control-plane facade: it owns the per-map
// TaskBoard registry that no individual component owns on its own,
// cascaded on map deletion, and exposes the typed operations an Ingress
// needs to be able to call. Everything HTTP-shaped (routing, JSON,
// multipart) stays out of this package by construction: every method
// here takes and returns plain Go values.
package fleet

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/orangedot/fleetctl/internal/board"
	"github.com/orangedot/fleetctl/internal/dispatcher"
	"github.com/orangedot/fleetctl/internal/eventsink"
	"github.com/orangedot/fleetctl/internal/fleeterr"
	"github.com/orangedot/fleetctl/internal/modules"
	"github.com/orangedot/fleetctl/internal/planner"
	"github.com/orangedot/fleetctl/internal/robot"
	"github.com/orangedot/fleetctl/internal/world"
)

// ControlPlane wires every core component together: World, the per-map
// Board registry, the module Registry/Host, the EventSink, and the
// Dispatcher that consults all of them.
type ControlPlane struct {
	mu     sync.Mutex
	World  *world.World
	boards map[string]*board.Board

	Registry *modules.Registry
	Host     *modules.Host
	Sink     *eventsink.Sink

	dispatcher *dispatcher.Dispatcher
}

// New returns a ControlPlane writing its event log to sinkWriter and its
// operational diagnostics through diag (nil disables diagnostics).
func New(sinkWriter io.Writer, diag *slog.Logger) *ControlPlane {
	sink := eventsink.New(sinkWriter, diag)
	reg := modules.NewRegistry()
	return &ControlPlane{
		World:      world.New(),
		boards:     make(map[string]*board.Board),
		Registry:   reg,
		Host:       modules.NewHost(reg, diag),
		Sink:       sink,
		dispatcher: dispatcher.New(reg, sink),
	}
}

// CreateMap creates a grid and a fresh TaskBoard for id.
func (cp *ControlPlane) CreateMap(id string, width, height int, name, mapURL string) error {
	if _, err := cp.World.CreateMap(id, width, height, name, mapURL); err != nil {
		return err
	}
	cp.mu.Lock()
	cp.boards[id] = board.New()
	cp.mu.Unlock()
	return nil
}

// DeleteMap deletes id's grid, cascading robot removal (World.DeleteMap)
// and dropping id's TaskBoard.
func (cp *ControlPlane) DeleteMap(id string) error {
	if err := cp.World.DeleteMap(id); err != nil {
		return err
	}
	cp.mu.Lock()
	delete(cp.boards, id)
	cp.mu.Unlock()
	return nil
}

func (cp *ControlPlane) board(mapID string) (*board.Board, error) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	b, ok := cp.boards[mapID]
	if !ok {
		return nil, fleeterr.New(fleeterr.NotFound, "map not found: "+mapID)
	}
	return b, nil
}

// UpsertRobot stores r. If r.MapID is non-empty the map must already
// exist.
func (cp *ControlPlane) UpsertRobot(r *robot.Robot) error {
	return cp.World.AddRobot(r)
}

// PatchRobotPosition sets r's position directly.
func (cp *ControlPlane) PatchRobotPosition(robotID string, x, y float64) error {
	r, err := cp.World.Robot(robotID)
	if err != nil {
		return err
	}
	r.SetPosition(x, y)
	return nil
}

// DeleteRobot removes robotID from World and its map.
func (cp *ControlPlane) DeleteRobot(robotID string) error {
	return cp.World.DeleteRobot(robotID)
}

// CreateTask appends a task to mapID's board. Returns ok=false (no
// error) if the target was not finite, matching TaskBoard.AddTask's
// silent-drop semantics.
func (cp *ControlPlane) CreateTask(mapID string, targetX, targetY float64, priority int, description string, moduleIDs []string) (board.TaskID, bool, error) {
	b, err := cp.board(mapID)
	if err != nil {
		return 0, false, err
	}
	id, ok := b.AddTask(targetX, targetY, priority, description, moduleIDs)
	return id, ok, nil
}

// ListTasks returns a snapshot of mapID's pending tasks.
func (cp *ControlPlane) ListTasks(mapID string) ([]*board.Task, error) {
	b, err := cp.board(mapID)
	if err != nil {
		return nil, err
	}
	return b.PendingTasks(), nil
}

// AssignTasks runs algo against mapID's board, robots, and grid, then
// triggers navigation for every committed pair.
func (cp *ControlPlane) AssignTasks(mapID string, algo dispatcher.Algorithm) error {
	b, err := cp.board(mapID)
	if err != nil {
		return err
	}
	g, err := cp.World.Grid(mapID)
	if err != nil {
		return err
	}
	robots := cp.World.RobotsOnMap(mapID)
	return cp.dispatcher.AssignTasks(b, g, robots, algo)
}

// GetAssignments returns mapID's active (taskID -> robotID) map.
func (cp *ControlPlane) GetAssignments(mapID string) (map[board.TaskID]string, error) {
	b, err := cp.board(mapID)
	if err != nil {
		return nil, err
	}
	return b.Assignments(), nil
}

// ClearAllAssignments clears mapID's active assignments, without
// altering task status, so a fresh dispatch can reconsider every robot.
func (cp *ControlPlane) ClearAllAssignments(mapID string) error {
	b, err := cp.board(mapID)
	if err != nil {
		return err
	}
	b.ClearAllAssignments()
	return nil
}

// Pathfind clears the event log and runs Planner once from robotID's
// current position to (x,y) on mapID, with no task or modules attached.
// It is the direct analogue of Dispatcher.navigate for a one-off,
// unassigned planning request.
func (cp *ControlPlane) Pathfind(robotID, mapID string, x, y float64) error {
	r, err := cp.World.Robot(robotID)
	if err != nil {
		return err
	}
	g, err := cp.World.Grid(mapID)
	if err != nil {
		return err
	}
	cp.Sink.Clear()
	return planner.Navigate(cp.Sink, cp.Registry, g, r, int(math.Round(x)), int(math.Round(y)), "", nil)
}

// ListModules returns every loaded module id, in load order.
func (cp *ControlPlane) ListModules() []string { return cp.Host.Loaded() }

// SetEnabled controls whether InvokeModule honors moduleID.
func (cp *ControlPlane) SetEnabled(moduleID string, enabled bool) { cp.Host.SetEnabled(moduleID, enabled) }

// InvokeModule invokes moduleID with context if it is enabled and has a
// callback in the Registry; returns false otherwise. Whether Host loaded
// an artifact for moduleID is not checked.
func (cp *ControlPlane) InvokeModule(moduleID, context string) bool {
	if !cp.Host.IsEnabled(moduleID) {
		return false
	}
	return cp.Registry.Invoke(moduleID, context)
}

// GetEvents returns a snapshot of the event log.
func (cp *ControlPlane) GetEvents() []eventsink.Record { return cp.Sink.Events() }

// ClearEvents truncates the in-memory event log snapshot.
func (cp *ControlPlane) ClearEvents() { cp.Sink.Clear() }

