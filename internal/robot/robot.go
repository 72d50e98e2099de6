// Package robot models a single grid-constrained mobile agent: identity,
// pose, and the kinematic primitives used to move it one grid cell at a
// time against an occupancy grid.
package robot

import (
	"math"

	"github.com/google/uuid"
	"github.com/orangedot/fleetctl/internal/grid"
)

// Direction enumerates the eight compass directions usable with
// MoveInDirection. The planner itself only ever uses the four cardinal
// directions (see internal/planner); MoveInDirection's diagonals exist as
// a Robot-level primitive.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	NorthEast
	NorthWest
	SouthEast
	SouthWest
)

var directionDelta = map[Direction][2]float64{
	North:     {0, -1},
	South:     {0, 1},
	East:      {1, 0},
	West:      {-1, 0},
	NorthEast: {1, -1},
	NorthWest: {-1, -1},
	SouthEast: {1, 1},
	SouthWest: {-1, 1},
}

// Robot is an agent with a real-valued pose on exactly one map at a time.
type Robot struct {
	ID         string
	Name       string
	Kind       string
	Attributes map[string]string

	X, Y        float64
	Speed       float64 // scalar speed, > 0
	MaxDistance float64 // 0 = unbounded

	MapID string
}

// New constructs a Robot. If id is empty a uuid is generated, so callers
// may omit it on upsert and let the control plane assign one.
func New(id, name, kind string) *Robot {
	if id == "" {
		id = uuid.NewString()
	}
	return &Robot{
		ID:         id,
		Name:       name,
		Kind:       kind,
		Attributes: make(map[string]string),
		Speed:      1,
	}
}

// Attr returns the attribute value for key, and whether it was present.
func (r *Robot) Attr(key string) (string, bool) {
	v, ok := r.Attributes[key]
	return v, ok
}

// SetAttr sets a free-form attribute.
func (r *Robot) SetAttr(key, value string) {
	if r.Attributes == nil {
		r.Attributes = make(map[string]string)
	}
	r.Attributes[key] = value
}

// Pos returns the robot's real-valued position.
func (r *Robot) Pos() (x, y float64) { return r.X, r.Y }

// SetPosition sets the robot's pose directly, bypassing accessibility and
// distance checks. ControlPlane.PatchRobotPosition uses it to apply the
// caller's coordinates as given, without validating them.
func (r *Robot) SetPosition(x, y float64) {
	r.X, r.Y = x, y
}

// GridPosition returns the pose rounded to the nearest grid cell.
func (r *Robot) GridPosition() (gx, gy int) {
	return int(math.Round(r.X)), int(math.Round(r.Y))
}

// CanMoveTo reports whether the robot may move to (x,y) on g: the
// floored coordinates must lie within bounds and be accessible, and if
// MaxDistance > 0 the Euclidean distance from the current pose must not
// exceed it.
func (r *Robot) CanMoveTo(x, y float64, g *grid.Grid) bool {
	fx, fy := int(math.Floor(x)), int(math.Floor(y))
	if !g.IsAccessible(fx, fy) {
		return false
	}
	if r.MaxDistance > 0 {
		dx, dy := x-r.X, y-r.Y
		if math.Sqrt(dx*dx+dy*dy) > r.MaxDistance {
			return false
		}
	}
	return true
}

// MoveTo commits the position if CanMoveTo holds, otherwise leaves the
// pose unchanged. Returns whether the move was applied.
func (r *Robot) MoveTo(x, y float64, g *grid.Grid) bool {
	if !r.CanMoveTo(x, y, g) {
		return false
	}
	r.X, r.Y = x, y
	return true
}

// MoveBy is a relative move expressed in terms of MoveTo.
func (r *Robot) MoveBy(dx, dy float64, g *grid.Grid) bool {
	return r.MoveTo(r.X+dx, r.Y+dy, g)
}

// MoveInDirection takes one unit step in dir, expressed in terms of MoveTo.
func (r *Robot) MoveInDirection(dir Direction, g *grid.Grid) bool {
	d, ok := directionDelta[dir]
	if !ok {
		return false
	}
	return r.MoveBy(d[0], d[1], g)
}

// MoveToGrid moves to an integer grid cell, expressed in terms of MoveTo.
func (r *Robot) MoveToGrid(gx, gy int, g *grid.Grid) bool {
	return r.MoveTo(float64(gx), float64(gy), g)
}
