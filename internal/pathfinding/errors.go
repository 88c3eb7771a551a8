package pathfinding

import (
	"errors"
	"fmt"
)

// PlanBlocked reports that the start or goal endpoint of a query is itself
// unwalkable (spec.md 7): a structured failure, never a crash, naming which
// end was at fault so the caller can log or react accordingly.
type PlanBlocked struct {
	End string // "start" or "goal"
}

func (e *PlanBlocked) Error() string {
	return fmt.Sprintf("path %s is unwalkable", e.End)
}

// ErrPlanNoRoute is returned when A* exhausts the open set without reaching
// the goal cell. The caller may widen its query and re-pose it, bounded by
// Cmax (spec.md 7).
var ErrPlanNoRoute = errors.New("no route within the planning window")

// ErrPlanCapacityExceeded is a fatal structured failure: the node pool or
// heap saturated before the search finished. Capacities are fixed and
// documented (internal/config), so this is an operator calibration signal,
// never a silent truncation (spec.md 7).
var ErrPlanCapacityExceeded = errors.New("planner node pool or heap capacity exceeded")
