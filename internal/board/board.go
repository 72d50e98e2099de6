package board

import (
	"sort"
	"sync"

	"github.com/orangedot/fleetctl/internal/fleeterr"
)

// Board is one map's pending-task queue and assignment bookkeeping.
// There is exactly one Board per map-id.
type Board struct {
	mu         sync.Mutex
	nextID     TaskID
	tasks      map[TaskID]*Task
	pending    []TaskID // insertion order; re-sorted on read
	assignment map[TaskID]string
}

// New returns an empty Board.
func New() *Board {
	return &Board{
		tasks:      make(map[TaskID]*Task),
		assignment: make(map[TaskID]string),
	}
}

// GenerateTaskID returns the next unique id for this board. Monotonic
// and never reused, even across deletions.
func (b *Board) GenerateTaskID() TaskID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	return b.nextID
}

// AddTask constructs and appends a Pending task from its fields. If the
// target is not finite the call is silently dropped (no error, no task
// created).
func (b *Board) AddTask(targetX, targetY float64, priority int, description string, moduleIDs []string) (TaskID, bool) {
	t := &Task{TargetX: targetX, TargetY: targetY, Priority: priority, Description: description, ModuleIDs: moduleIDs}
	if !t.TargetFinite() {
		return 0, false
	}
	id := b.GenerateTaskID()
	t.ID = id
	t.Status = Pending
	b.mu.Lock()
	b.tasks[id] = t
	b.pending = append(b.pending, id)
	b.mu.Unlock()
	return id, true
}

// AddPrebuilt appends a pre-constructed task. The caller is responsible
// for id uniqueness.
func (b *Board) AddPrebuilt(t *Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t.Status = Pending
	b.tasks[t.ID] = t
	b.pending = append(b.pending, t.ID)
	if t.ID >= b.nextID {
		b.nextID = t.ID
	}
}

// sortedPending returns pending task ids ordered (priority desc, id
// asc), stable across calls.
func (b *Board) sortedPending() []TaskID {
	ids := make([]TaskID, len(b.pending))
	copy(ids, b.pending)
	sort.SliceStable(ids, func(i, j int) bool {
		ti, tj := b.tasks[ids[i]], b.tasks[ids[j]]
		if ti.Priority != tj.Priority {
			return ti.Priority > tj.Priority
		}
		return ti.ID < tj.ID
	})
	return ids
}

// PendingTasks returns a snapshot of the pending tasks, in canonical
// order.
func (b *Board) PendingTasks() []*Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := b.sortedPending()
	out := make([]*Task, len(ids))
	for i, id := range ids {
		out[i] = b.tasks[id]
	}
	return out
}

// GetTaskByID returns the task registered under id. Fails NotFound if
// absent.
func (b *Board) GetTaskByID(id TaskID) (*Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	if !ok {
		return nil, fleeterr.New(fleeterr.NotFound, "task not found")
	}
	return t, nil
}

// removePendingLocked drops id from the pending list, if present.
func (b *Board) removePendingLocked(id TaskID) {
	for i, pid := range b.pending {
		if pid == id {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			return
		}
	}
}

// CommitAssignment transitions task id to Assigned, records (id ->
// robotID), and removes it from the pending set. Fails AlreadyAssigned
// if id or robotID already participates in an active assignment, and
// NotFound if id is unknown.
func (b *Board) CommitAssignment(id TaskID, robotID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	if !ok {
		return fleeterr.New(fleeterr.NotFound, "task not found")
	}
	if _, taken := b.assignment[id]; taken {
		return fleeterr.New(fleeterr.AlreadyAssigned, "task already assigned")
	}
	for _, rid := range b.assignment {
		if rid == robotID {
			return fleeterr.New(fleeterr.AlreadyAssigned, "robot already assigned")
		}
	}
	t.Status = Assigned
	b.assignment[id] = robotID
	b.removePendingLocked(id)
	return nil
}

// MarkInProgress transitions an assigned task to InProgress, at the
// start of navigation.
func (b *Board) MarkInProgress(id TaskID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.tasks[id]; ok {
		t.Status = InProgress
	}
}

// SetStatus transitions id to status without touching the assignment
// map, so a task's outcome (Completed or Failed) is recorded while the
// committed (task -> robot) pair remains queryable through Assignments
// until something explicitly removes it (MarkComplete or
// ClearAllAssignments).
func (b *Board) SetStatus(id TaskID, status Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.tasks[id]; ok {
		t.Status = status
	}
}

// MarkComplete removes id from the assignment map, freeing its robot for
// a future dispatch. Unlike SetStatus, this is a caller-invoked operation
// separate from navigation's own status transition.
func (b *Board) MarkComplete(id TaskID, status Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	if !ok {
		return fleeterr.New(fleeterr.NotFound, "task not found")
	}
	t.Status = status
	delete(b.assignment, id)
	return nil
}

// ClearAllAssignments removes every active assignment without touching
// task status, so previously-busy robots become eligible again before a
// fresh dispatch.
func (b *Board) ClearAllAssignments() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assignment = make(map[TaskID]string)
}

// Assignments returns a snapshot of the active (taskID -> robotID) map.
func (b *Board) Assignments() map[TaskID]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[TaskID]string, len(b.assignment))
	for k, v := range b.assignment {
		out[k] = v
	}
	return out
}

// RobotAssigned reports whether robotID currently participates in an
// active assignment on this board.
func (b *Board) RobotAssigned(robotID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rid := range b.assignment {
		if rid == robotID {
			return true
		}
	}
	return false
}
