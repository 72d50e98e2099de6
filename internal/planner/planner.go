// Package planner implements the single-source shortest-path search used
// both as a pure cost function (Dispatcher's pairwise cost matrices) and
// as the mutating navigation phase that moves a robot cell by cell and
// emits the structured event stream Planner owns.
//
// The search itself is Dijkstra on a four-connected grid with uniform
// step cost 1, via a binary min-heap with stale-entry skipping — the
// same shape as the teacher's space-time A* (container/heap, parent
// pointers, a visited/closed set), specialized to an unweighted grid
// with no heuristic and no time dimension.
package planner

import (
	"container/heap"
	"math"

	"github.com/orangedot/fleetctl/internal/eventsink"
	"github.com/orangedot/fleetctl/internal/fleeterr"
	"github.com/orangedot/fleetctl/internal/grid"
	"github.com/orangedot/fleetctl/internal/modules"
	"github.com/orangedot/fleetctl/internal/robot"
)

// UnreachablePenalty is the sentinel path-distance Dispatcher uses for
// pairs it cannot connect, large enough that any reachable option
// dominates it.
const UnreachablePenalty = 1 << 30

// cell is a grid coordinate pair.
type cell struct{ x, y int }

// neighborOffsets fixes the expansion/tie-break order: +x, -x, +y, -y.
var neighborOffsets = [4]cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// heapEntry is one min-heap element keyed by cumulative cost.
type heapEntry struct {
	c    cell
	cost int
}

type minHeap []heapEntry

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)         { *h = append(*h, x.(heapEntry)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// searchResult holds the distance/parent arrays produced by one Dijkstra
// run, indexed by y*width+x, allocated fresh per invocation.
type searchResult struct {
	width   int
	dist    []int
	parentX []int
	parentY []int
}

func newSearchResult(w, h int) *searchResult {
	n := w * h
	sr := &searchResult{
		width:   w,
		dist:    make([]int, n),
		parentX: make([]int, n),
		parentY: make([]int, n),
	}
	for i := range sr.dist {
		sr.dist[i] = math.MaxInt32
		sr.parentX[i] = -1
		sr.parentY[i] = -1
	}
	return sr
}

func (sr *searchResult) idx(c cell) int { return c.y*sr.width + c.x }

// sink is the subset of eventsink.Sink this package emits through. A nil
// sink means "don't emit" (used by the pure cost path).
type sink interface {
	LogPlannerStart(robotID, robotName string, startX, startY, goalX, goalY, width, height int)
	LogExpand(robotID string, x, y, cost, parentX, parentY int)
	LogPush(robotID string, x, y, cost int)
	LogPath(robotID string, size int, startX, startY, endX, endY int)
	LogMoveExecuted(robotID string, x, y int)
}

// dijkstra runs the core search from start to goal on g, optionally
// emitting events through sk (nil = silent). It returns the search
// arrays so callers can reconstruct a path or just read the goal's
// distance.
func dijkstra(g *grid.Grid, start, goal cell, robotID, robotName string, sk sink) *searchResult {
	w, h := g.Width(), g.Height()
	sr := newSearchResult(w, h)
	sr.dist[sr.idx(start)] = 0

	if sk != nil {
		sk.LogPlannerStart(robotID, robotName, start.x, start.y, goal.x, goal.y, w, h)
	}

	open := &minHeap{{c: start, cost: 0}}
	heap.Init(open)

	for open.Len() > 0 {
		e := heap.Pop(open).(heapEntry)
		if e.cost > sr.dist[sr.idx(e.c)] {
			continue // stale entry: a cheaper path already settled this cell
		}

		px, py := sr.parentX[sr.idx(e.c)], sr.parentY[sr.idx(e.c)]
		if sk != nil {
			sk.LogExpand(robotID, e.c.x, e.c.y, e.cost, px, py)
		}

		if e.c == goal {
			break
		}

		for _, off := range neighborOffsets {
			n := cell{e.c.x + off.x, e.c.y + off.y}
			if !g.IsAccessible(n.x, n.y) {
				continue
			}
			newCost := e.cost + 1
			ni := sr.idx(n)
			if newCost < sr.dist[ni] {
				sr.dist[ni] = newCost
				sr.parentX[ni] = e.c.x
				sr.parentY[ni] = e.c.y
				heap.Push(open, heapEntry{c: n, cost: newCost})
				if sk != nil {
					sk.LogPush(robotID, n.x, n.y, newCost)
				}
			}
		}
	}

	return sr
}

func reconstruct(sr *searchResult, start, goal cell) ([]cell, bool) {
	if start == goal {
		return []cell{start}, true
	}
	if sr.dist[sr.idx(goal)] == math.MaxInt32 {
		return nil, false
	}
	var path []cell
	cur := goal
	for {
		path = append(path, cur)
		if cur == start {
			break
		}
		px, py := sr.parentX[sr.idx(cur)], sr.parentY[sr.idx(cur)]
		if px == -1 && py == -1 {
			return nil, false
		}
		cur = cell{px, py}
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}

// checkPreconditions runs the ordered accessibility checks a search must
// pass before Dijkstra runs: goal in bounds, goal accessible, start
// accessible.
func checkPreconditions(g *grid.Grid, start, goal cell) error {
	if !g.IsValidPosition(goal.x, goal.y) {
		return fleeterr.NewUnreachable(fleeterr.ReasonOutOfBounds)
	}
	if !g.IsAccessible(goal.x, goal.y) {
		return fleeterr.NewUnreachable(fleeterr.ReasonBlocked)
	}
	if !g.IsAccessible(start.x, start.y) {
		return fleeterr.NewUnreachable(fleeterr.ReasonStartBlocked)
	}
	return nil
}

// PathDistance returns the number of edges in the shortest path from
// (startX,startY) to (goalX,goalY) on g. If unreachable it returns
// UnreachablePenalty, never an error: Dispatcher treats it as a
// dominated-but-valid cost.
func PathDistance(g *grid.Grid, startX, startY, goalX, goalY int) int {
	start, goal := cell{startX, startY}, cell{goalX, goalY}
	if err := checkPreconditions(g, start, goal); err != nil {
		return UnreachablePenalty
	}
	if start == goal {
		return 0
	}
	sr := dijkstra(g, start, goal, "", "", nil)
	d := sr.dist[sr.idx(goal)]
	if d == math.MaxInt32 {
		return UnreachablePenalty
	}
	return d
}

// Navigate runs the full planner execution for one robot/task pair: the
// precondition checks, the logged Dijkstra search, path reconstruction,
// stepwise movement with MOVE_EXECUTED events, and finally invoking each
// moduleID through reg in declared order once the robot has arrived.
// Navigation failures (Unreachable, or a movement stopping partway) are
// returned as errors but never panic; a failed step simply leaves the
// robot at its last successful cell.
func Navigate(sk *eventsink.Sink, reg *modules.Registry, g *grid.Grid, r *robot.Robot, goalX, goalY int, moduleContext string, moduleIDs []string) error {
	startX, startY := r.GridPosition()
	start, goal := cell{startX, startY}, cell{goalX, goalY}

	if err := checkPreconditions(g, start, goal); err != nil {
		return err
	}

	if start == goal {
		sk.LogPlannerStart(r.ID, r.Name, start.x, start.y, goal.x, goal.y, g.Width(), g.Height())
		sk.LogPath(r.ID, 1, start.x, start.y, goal.x, goal.y)
		invokeModules(reg, moduleIDs, moduleContext)
		return nil
	}

	sr := dijkstra(g, start, goal, r.ID, r.Name, sk)
	path, ok := reconstruct(sr, start, goal)
	if !ok {
		return fleeterr.NewUnreachable(fleeterr.ReasonNoPath)
	}

	sk.LogPath(r.ID, len(path), path[0].x, path[0].y, path[len(path)-1].x, path[len(path)-1].y)

	for i := 1; i < len(path); i++ {
		step := path[i]
		if !r.MoveToGrid(step.x, step.y, g) {
			return fleeterr.New(fleeterr.Unreachable, "movement stopped before reaching goal")
		}
		sk.LogMoveExecuted(r.ID, step.x, step.y)
	}

	invokeModules(reg, moduleIDs, moduleContext)
	return nil
}

func invokeModules(reg *modules.Registry, moduleIDs []string, moduleContext string) {
	if reg == nil {
		return
	}
	for _, id := range moduleIDs {
		reg.Invoke(id, moduleContext)
	}
}
