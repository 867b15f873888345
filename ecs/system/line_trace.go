package system

import (
	"math"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

// WallTracer tests line of sight against WallTag entities without a
// physics space.
type WallTracer struct{}

func (WallTracer) LineClear(w *ecs.World, x0, y0, x1, y1 float64, mask uint) bool {
	if w == nil || mask&component.LayerWall == 0 {
		return true
	}

	blocked := false
	ecs.ForEach2(w, component.WallTagComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.WallTag, t *component.Transform) {
		if blocked {
			return
		}
		body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if !ok {
			return
		}
		if body.Radius > 0 {
			blocked = segmentNearPoint(x0, y0, x1, y1, t.X, t.Y, body.Radius)
			return
		}
		hw, hh := halfExtents(body)
		blocked = segmentCrossesBox(x0, y0, x1, y1, t.X-hw, t.Y-hh, t.X+hw, t.Y+hh)
	})
	return !blocked
}

// halfExtents treats a box without a size as one unit square.
func halfExtents(body *component.PhysicsBody) (float64, float64) {
	w, h := body.Width, body.Height
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return w / 2, h / 2
}

// segmentCrossesBox clips the segment against each slab of the box.
func segmentCrossesBox(x0, y0, x1, y1, minX, minY, maxX, maxY float64) bool {
	enter, exit := 0.0, 1.0
	clip := func(p, d, lo, hi float64) bool {
		if d == 0 {
			return p >= lo && p <= hi
		}
		t0, t1 := (lo-p)/d, (hi-p)/d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		enter = math.Max(enter, t0)
		exit = math.Min(exit, t1)
		return enter <= exit
	}
	return clip(x0, x1-x0, minX, maxX) && clip(y0, y1-y0, minY, maxY)
}

// segmentNearPoint reports whether the segment passes within r of (cx, cy).
func segmentNearPoint(x0, y0, x1, y1, cx, cy, r float64) bool {
	dx, dy := x1-x0, y1-y0
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = common.Clamp01(((cx-x0)*dx + (cy-y0)*dy) / lenSq)
	}
	return common.Distance(x0+dx*t, y0+dy*t, cx, cy) <= r
}
