// Package fleeterr defines the error taxonomy shared across the fleet
// control plane. Components return these instead of panicking or using
// ad-hoc string errors so callers can branch on Kind with errors.As.
package fleeterr

import "fmt"

// Kind classifies a control-plane error.
type Kind int

const (
	// InvalidArgument covers non-positive dimensions, non-finite
	// coordinates, and other caller mistakes rejected before any state
	// change.
	InvalidArgument Kind = iota
	// NotFound covers unknown map, robot, task, or module ids.
	NotFound
	// OutOfRange covers grid access outside [0,W)x[0,H).
	OutOfRange
	// Unreachable covers planner rejection or failure; see Reason.
	Unreachable
	// LoadFailure covers ModuleHost artifact load failures.
	LoadFailure
	// AlreadyAssigned covers assigning a task/robot already committed.
	AlreadyAssigned
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case OutOfRange:
		return "OutOfRange"
	case Unreachable:
		return "Unreachable"
	case LoadFailure:
		return "LoadFailure"
	case AlreadyAssigned:
		return "AlreadyAssigned"
	default:
		return "Unknown"
	}
}

// Reason is a sub-classification of Unreachable.
type Reason int

const (
	// ReasonNone applies to non-Unreachable errors.
	ReasonNone Reason = iota
	ReasonOutOfBounds
	ReasonBlocked
	ReasonStartBlocked
	ReasonNoPath
)

func (r Reason) String() string {
	switch r {
	case ReasonOutOfBounds:
		return "OutOfBounds"
	case ReasonBlocked:
		return "Blocked"
	case ReasonStartBlocked:
		return "StartBlocked"
	case ReasonNoPath:
		return "NoPath"
	default:
		return "None"
	}
}

// Error is the concrete error type returned by every core component.
type Error struct {
	Kind   Kind
	Reason Reason
	Msg    string
	Cause  error
}

func (e *Error) Error() string {
	if e.Kind == Unreachable && e.Reason != ReasonNone {
		if e.Msg == "" {
			return fmt.Sprintf("%s(%s)", e.Kind, e.Reason)
		}
		return fmt.Sprintf("%s(%s): %s", e.Kind, e.Reason, e.Msg)
	}
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a plain Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// NewUnreachable builds an Unreachable error with the given Reason.
func NewUnreachable(reason Reason) *Error {
	return &Error{Kind: Unreachable, Reason: reason}
}

// Is lets errors.Is match on Kind (and Reason, for Unreachable) alone,
// ignoring Msg/Cause, so callers can write errors.Is(err, fleeterr.New(fleeterr.NotFound, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	if e.Kind == Unreachable && t.Reason != ReasonNone {
		return e.Reason == t.Reason
	}
	return true
}
