package system

import (
	"log"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

// LineOfSight answers obstruction tests. mask selects the collision
// categories that block the line.
type LineOfSight interface {
	LineClear(w *ecs.World, x0, y0, x1, y1 float64, mask uint) bool
}

// PerceptionSystem runs the periodic line of sight check of every AI. Each
// agent keeps its own deadline; the first check happens on the first
// update after spawn.
type PerceptionSystem struct {
	los LineOfSight
}

func NewPerceptionSystem(los LineOfSight) *PerceptionSystem {
	if los == nil {
		los = WallTracer{}
	}
	return &PerceptionSystem{los: los}
}

func (s *PerceptionSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	now := w.Now()

	entities := w.Query(
		component.AIComponent.Kind(),
		component.AIContextComponent.Kind(),
		component.TransformComponent.Kind(),
	)
	for _, e := range entities {
		ai, ok := ecs.Get(w, e, component.AIComponent.Kind())
		if !ok {
			continue
		}
		ctx, ok := ecs.Get(w, e, component.AIContextComponent.Kind())
		if !ok {
			continue
		}
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		if now < ctx.NextSeekAt {
			continue
		}

		px, py, found := targetPosition(w, e)
		visible := found && s.los.LineClear(w, t.X, t.Y, px, py, component.LayerWall)
		observePlayer(ctx, visible, px, py)

		if visible && ctx.Idle {
			_ = ecs.Add(w, e, component.AIStateInterruptComponent.Kind(), &component.AIStateInterrupt{Event: component.EventSeesPlayer})
		}

		wait := ai.SeekInterval
		if visible {
			wait = ai.SeekIntervalChasing
		}
		ctx.NextSeekAt = now + wait

		if common.Debug {
			log.Printf("perception: entity=%s visible=%t next=%.2f", e, visible, ctx.NextSeekAt)
		}
	}
}
