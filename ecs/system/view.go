package system

import (
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

// view maps world units to screen pixels. The level is centered in the
// base resolution when LevelBounds is present.
type view struct {
	scale  float64
	ox, oy float64
}

func levelView(w *ecs.World, scale float64) view {
	if scale <= 0 {
		scale = common.PixelsPerUnit
	}
	v := view{scale: scale}
	if e, ok := w.First(component.LevelBoundsComponent.Kind()); ok {
		if b, ok := ecs.Get(w, e, component.LevelBoundsComponent.Kind()); ok {
			v.ox = (common.BaseWidth - b.Width*scale) / 2
			v.oy = (common.BaseHeight - b.Height*scale) / 2
		}
	}
	return v
}

func (v view) toScreen(x, y float64) (float64, float64) {
	return x*v.scale + v.ox, y*v.scale + v.oy
}

func (v view) toScreen32(x, y float64) (float32, float32) {
	sx, sy := v.toScreen(x, y)
	return float32(sx), float32(sy)
}

func (v view) toWorld(px, py float64) (float64, float64) {
	return (px - v.ox) / v.scale, (py - v.oy) / v.scale
}
