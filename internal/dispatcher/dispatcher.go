// Package dispatcher implements the three task-to-robot assignment
// strategies and the commit/navigate pipeline that follows a successful
// plan. Optimal and Balanced score pairs with the Planner-derived path
// distance (planner.PathDistance); Greedy picks the robot nearest by
// straight-line distance. Navigation of each committed pair is handed to
// planner.Navigate; dispatcher runs no grid search of its own.
package dispatcher

import (
	"math"
	"sort"
	"strconv"

	"github.com/orangedot/fleetctl/internal/board"
	"github.com/orangedot/fleetctl/internal/eventsink"
	"github.com/orangedot/fleetctl/internal/fleeterr"
	"github.com/orangedot/fleetctl/internal/grid"
	"github.com/orangedot/fleetctl/internal/modules"
	"github.com/orangedot/fleetctl/internal/planner"
	"github.com/orangedot/fleetctl/internal/robot"
)

// Algorithm selects one of the three assignment strategies.
type Algorithm string

const (
	Greedy   Algorithm = "greedy"
	Optimal  Algorithm = "optimal"
	Balanced Algorithm = "balanced"
)

const speedEpsilon = 1e-6

// Dispatcher commits assignment plans into a Board and triggers
// navigation for each committed pair. It is stateless beyond the shared
// Registry/Sink every navigation needs; the Board and Grid for a given
// map are supplied by the caller, since the control-plane facade owns
// the per-map Board registry and passes it in by borrow.
type Dispatcher struct {
	Registry *modules.Registry
	Sink     *eventsink.Sink
}

// New returns a Dispatcher wired to the given collaborators.
func New(reg *modules.Registry, sink *eventsink.Sink) *Dispatcher {
	return &Dispatcher{Registry: reg, Sink: sink}
}

func isFinitePos(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}

// availableRobots returns the robots in robots whose position is finite
// and which have no active assignment on b.
func availableRobots(robots []*robot.Robot, b *board.Board) []*robot.Robot {
	out := make([]*robot.Robot, 0, len(robots))
	for _, r := range robots {
		if !isFinitePos(r.X, r.Y) {
			continue
		}
		if b.RobotAssigned(r.ID) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func targetCell(t *board.Task) (int, int) {
	return int(math.Round(t.TargetX)), int(math.Round(t.TargetY))
}

// pathDistance is the number of edges in the shortest path from r's
// current grid position to t's target, or planner.UnreachablePenalty.
func pathDistance(g *grid.Grid, r *robot.Robot, t *board.Task) int {
	rx, ry := r.GridPosition()
	tx, ty := targetCell(t)
	return planner.PathDistance(g, rx, ry, tx, ty)
}

func pathCost(g *grid.Grid, r *robot.Robot, t *board.Task) float64 {
	return float64(pathDistance(g, r, t)) - 10*float64(t.Priority)
}

func makespanCost(g *grid.Grid, r *robot.Robot, t *board.Task) float64 {
	d := float64(pathDistance(g, r, t))
	if r.Speed <= 0 {
		return d - 10*float64(t.Priority)
	}
	speed := r.Speed
	if speed < speedEpsilon {
		speed = speedEpsilon
	}
	return d/speed - 10*float64(t.Priority)
}

// pair is one candidate (task, robot) edge with its cost under whichever
// cost function the caller selected.
type pair struct {
	task  *board.Task
	robot *robot.Robot
	cost  float64
}

// matchSortedEdges is the reference matching algorithm: enumerate all
// (task, robot) pairs, sort ascending by cost, commit each pair whose
// task and robot are both still free. Not guaranteed Hungarian-optimal,
// but deterministic, and the sorted-edge form kept here for
// compatibility with the algorithm a true minimum-weight matching would
// be substituted for.
func matchSortedEdges(tasks []*board.Task, robots []*robot.Robot, cost func(*robot.Robot, *board.Task) float64) []pair {
	pairs := make([]pair, 0, len(tasks)*len(robots))
	for _, t := range tasks {
		for _, r := range robots {
			pairs = append(pairs, pair{task: t, robot: r, cost: cost(r, t)})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].cost < pairs[j].cost })

	takenTask := make(map[board.TaskID]bool)
	takenRobot := make(map[string]bool)
	var plan []pair
	for _, p := range pairs {
		if takenTask[p.task.ID] || takenRobot[p.robot.ID] {
			continue
		}
		takenTask[p.task.ID] = true
		takenRobot[p.robot.ID] = true
		plan = append(plan, p)
	}
	return plan
}

// AssignNextTaskNearestRobot is strategy 1: pop the head of b's
// canonically-ordered pending list and assign it to the available robot
// nearest by straight-line (Euclidean) distance to the target. Returns
// ok=false if there was no pending task or no available robot.
func (d *Dispatcher) AssignNextTaskNearestRobot(b *board.Board, g *grid.Grid, robots []*robot.Robot) (taskID board.TaskID, robotID string, ok bool) {
	pending := b.PendingTasks()
	if len(pending) == 0 {
		return 0, "", false
	}
	task := pending[0]

	avail := availableRobots(robots, b)
	if len(avail) == 0 {
		return 0, "", false
	}

	best := avail[0]
	bestDist := euclidean(best, task)
	for _, r := range avail[1:] {
		if dist := euclidean(r, task); dist < bestDist {
			best, bestDist = r, dist
		}
	}

	if err := b.CommitAssignment(task.ID, best.ID); err != nil {
		return 0, "", false
	}
	d.navigate(b, g, task, best)
	return task.ID, best.ID, true
}

func euclidean(r *robot.Robot, t *board.Task) float64 {
	dx, dy := r.X-t.TargetX, r.Y-t.TargetY
	return math.Sqrt(dx*dx + dy*dy)
}

// AssignTasks runs algo over b's pending tasks and robots, commits the
// resulting plan, and triggers navigation for each committed pair. A
// navigation failure for one pair never voids the others.
func (d *Dispatcher) AssignTasks(b *board.Board, g *grid.Grid, robots []*robot.Robot, algo Algorithm) error {
	switch algo {
	case Greedy:
		for {
			if _, _, ok := d.AssignNextTaskNearestRobot(b, g, robots); !ok {
				return nil
			}
		}
	case Optimal:
		return d.assignMatched(b, g, robots, pathCost)
	case Balanced:
		return d.assignMatched(b, g, robots, makespanCost)
	default:
		return fleeterr.New(fleeterr.InvalidArgument, "unknown algorithm: "+string(algo))
	}
}

func (d *Dispatcher) assignMatched(b *board.Board, g *grid.Grid, robots []*robot.Robot, costFn func(*grid.Grid, *robot.Robot, *board.Task) float64) error {
	tasks := b.PendingTasks()
	avail := availableRobots(robots, b)
	if len(tasks) == 0 || len(avail) == 0 {
		return nil
	}

	plan := matchSortedEdges(tasks, avail, func(r *robot.Robot, t *board.Task) float64 {
		return costFn(g, r, t)
	})

	for _, p := range plan {
		if err := b.CommitAssignment(p.task.ID, p.robot.ID); err != nil {
			continue // a skipped pair never voids the rest of the plan
		}
		d.navigate(b, g, p.task, p.robot)
	}
	return nil
}

// navigate runs the planner for one committed (task, robot) pair,
// transitioning the task to InProgress first and to Completed/Failed
// afterward. It never returns an error: a navigation failure is opaque
// to the caller, recorded only via the task's terminal status. The
// committed (task -> robot) pair is left in the board's assignment map
// so GetAssignments reflects the dispatch plan; only an explicit
// MarkComplete or ClearAllAssignments call removes it.
func (d *Dispatcher) navigate(b *board.Board, g *grid.Grid, task *board.Task, r *robot.Robot) {
	b.MarkInProgress(task.ID)
	tx, ty := targetCell(task)
	err := planner.Navigate(d.Sink, d.Registry, g, r, tx, ty, strconv.Itoa(int(task.ID)), task.ModuleIDs)
	if err != nil {
		b.SetStatus(task.ID, board.Failed)
		return
	}
	b.SetStatus(task.ID, board.Completed)
}
