package pathfinding

import (
	"context"
	"sync/atomic"
)

// PlannerProfiler captures instrumentation hooks for WindowPlanner queries,
// mirroring the counters a BlockNavigator instruments for block-level
// search: node expansions, allocations, and heuristic evaluations, plus the
// planner-specific fast-path and window-size counters.
type PlannerProfiler interface {
	RecordFastPathHit()
	RecordWindowSetup(cells int)
	RecordNodeAllocated()
	RecordNodeExpanded()
	RecordHeuristicEvaluation()
}

// PlannerMetrics accumulates profiling counters across WindowPlanner queries.
// It is safe for concurrent use; in practice the gameplay loop is
// single-threaded during planning, but atomics keep a background metrics
// exporter safe to read from.
type PlannerMetrics struct {
	fastPathHits         atomic.Int64
	windowSetups         atomic.Int64
	windowCells          atomic.Int64
	nodesAllocated       atomic.Int64
	nodesExpanded        atomic.Int64
	heuristicEvaluations atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of PlannerMetrics' counters.
type MetricsSnapshot struct {
	FastPathHits         int64
	WindowSetups         int64
	WindowCells          int64
	NodesAllocated       int64
	NodesExpanded        int64
	HeuristicEvaluations int64
}

// Profiler returns a PlannerProfiler implementation backed by this metric set.
func (m *PlannerMetrics) Profiler() PlannerProfiler {
	if m == nil {
		return nil
	}
	return (*metricsProfiler)(m)
}

// Reset zeroes all counters.
func (m *PlannerMetrics) Reset() {
	if m == nil {
		return
	}
	m.fastPathHits.Store(0)
	m.windowSetups.Store(0)
	m.windowCells.Store(0)
	m.nodesAllocated.Store(0)
	m.nodesExpanded.Store(0)
	m.heuristicEvaluations.Store(0)
}

// Snapshot captures the current counter values.
func (m *PlannerMetrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		FastPathHits:         m.fastPathHits.Load(),
		WindowSetups:         m.windowSetups.Load(),
		WindowCells:          m.windowCells.Load(),
		NodesAllocated:       m.nodesAllocated.Load(),
		NodesExpanded:        m.nodesExpanded.Load(),
		HeuristicEvaluations: m.heuristicEvaluations.Load(),
	}
}

type metricsProfiler PlannerMetrics

func (m *metricsProfiler) RecordFastPathHit() {
	(*PlannerMetrics)(m).fastPathHits.Add(1)
}

func (m *metricsProfiler) RecordWindowSetup(cells int) {
	metrics := (*PlannerMetrics)(m)
	metrics.windowSetups.Add(1)
	metrics.windowCells.Add(int64(cells))
}

func (m *metricsProfiler) RecordNodeAllocated() {
	(*PlannerMetrics)(m).nodesAllocated.Add(1)
}

func (m *metricsProfiler) RecordNodeExpanded() {
	(*PlannerMetrics)(m).nodesExpanded.Add(1)
}

func (m *metricsProfiler) RecordHeuristicEvaluation() {
	(*PlannerMetrics)(m).heuristicEvaluations.Add(1)
}

type profilerContextKey struct{}

// ContextWithProfiler returns a context that reports to the given profiler
// during FindPath.
func ContextWithProfiler(ctx context.Context, profiler PlannerProfiler) context.Context {
	if profiler == nil {
		return ctx
	}
	return context.WithValue(ctx, profilerContextKey{}, profiler)
}

func profilerFromContext(ctx context.Context) PlannerProfiler {
	if ctx == nil {
		return nil
	}
	if profiler, ok := ctx.Value(profilerContextKey{}).(PlannerProfiler); ok {
		return profiler
	}
	return nil
}
