package arbor

import (
	"time"

	"go.uber.org/zap"
)

// globalDebug mirrors the most recently set Core debug flag so that tree
// operations (which lack a Core pointer) can check it cheaply. Only valid
// with a single Core.
var globalDebug bool

// debugStats holds per-frame timing metrics. Only populated in debug mode.
type debugStats struct {
	updateTime time.Duration
	lateTime   time.Duration
	renderTime time.Duration
	submitTime time.Duration
	frame      FrameStats
}

// debugLog writes timing and draw-call stats at debug level.
func debugLog(log *zap.Logger, stats debugStats) {
	total := stats.updateTime + stats.lateTime + stats.renderTime + stats.submitTime
	log.Debug("frame",
		zap.Duration("update", stats.updateTime),
		zap.Duration("late_update", stats.lateTime),
		zap.Duration("render", stats.renderTime),
		zap.Duration("submit", stats.submitTime),
		zap.Duration("total", total),
		zap.Int("commands", stats.frame.Commands),
		zap.Int("draw_calls", stats.frame.DrawCalls))
}

// debugMaxTreeDepth is the depth above which AddChild warns.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(log *zap.Logger, e *Entity) {
	depth := 0
	for p := e; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		log.Warn("tree depth exceeds threshold",
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth),
			zap.String("entity", e.name))
	}
}

// debugMaxChildCount is the child count above which AddChild warns.
const debugMaxChildCount = 1000

func debugCheckChildCount(log *zap.Logger, e *Entity) {
	if len(e.children) > debugMaxChildCount {
		log.Warn("child count exceeds threshold",
			zap.String("entity", e.name),
			zap.Int("children", len(e.children)),
			zap.Int("threshold", debugMaxChildCount))
	}
}
