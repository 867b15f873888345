package system

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// RenderSystem draws every Shape entity as a flat primitive, then a HUD.
type RenderSystem struct {
	// Scale is pixels per world unit. Zero means common.PixelsPerUnit.
	Scale float64

	face text.Face
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{face: text.NewGoXFace(basicfont.Face7x13)}
}

// Update is a no-op; drawing happens in Draw.
func (r *RenderSystem) Update(w *ecs.World) {}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	v := levelView(w, r.Scale)
	screen.Fill(colornames.Black)

	entities := w.Query(component.TransformComponent.Kind(), component.ShapeComponent.Kind())
	sort.SliceStable(entities, func(i, j int) bool {
		li := 0
		if layer, ok := ecs.Get(w, entities[i], component.RenderLayerComponent.Kind()); ok {
			li = layer.Index
		}
		lj := 0
		if layer, ok := ecs.Get(w, entities[j], component.RenderLayerComponent.Kind()); ok {
			lj = layer.Index
		}
		if li != lj {
			return li < lj
		}
		return entities[i].ID < entities[j].ID
	})

	for _, e := range entities {
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		s, ok := ecs.Get(w, e, component.ShapeComponent.Kind())
		if !ok {
			continue
		}
		r.drawShape(w, screen, e, t, s, v)
	}

	if common.Debug {
		r.drawSightLines(w, screen, v)
	}
	r.drawHUD(w, screen)
}

func shapeColor(w *ecs.World, e ecs.Entity, s *component.Shape) color.Color {
	if wf, ok := ecs.Get(w, e, component.WhiteFlashComponent.Kind()); ok && wf.On {
		return colornames.White
	}
	if s.IdleColor != nil {
		if anim, ok := ecs.Get(w, e, component.AnimatorComponent.Kind()); ok && anim.Idle {
			return s.IdleColor
		}
	}
	if s.Color == nil {
		return colornames.White
	}
	return s.Color
}

func (r *RenderSystem) drawShape(w *ecs.World, screen *ebiten.Image, e ecs.Entity, t *component.Transform, s *component.Shape, v view) {
	clr := shapeColor(w, e, s)

	radius := 0.0
	width, height := 1.0, 1.0
	if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
		radius = body.Radius
		if body.Width > 0 {
			width = body.Width
		}
		if body.Height > 0 {
			height = body.Height
		}
	}

	if radius > 0 {
		cx, cy := v.toScreen32(t.X, t.Y)
		rad := float32(radius * v.scale)
		vector.FillCircle(screen, cx, cy, rad, clr, true)
		if s.ShowFacing {
			fx := cx + float32(math.Cos(t.Rotation))*rad*1.4
			fy := cy + float32(math.Sin(t.Rotation))*rad*1.4
			vector.StrokeLine(screen, cx, cy, fx, fy, 2, colornames.White, true)
		}
		return
	}

	x, y := v.toScreen32(t.X-width/2, t.Y-height/2)
	pw, ph := float32(width*v.scale), float32(height*v.scale)
	vector.FillRect(screen, x, y, pw, ph, clr, false)
	if common.Debug {
		vector.StrokeRect(screen, x, y, pw, ph, 1, color.RGBA{R: 255, A: 200}, false)
	}
}

// drawSightLines draws each enemy's line to the point it last saw the
// player: red while visible, grey otherwise.
func (r *RenderSystem) drawSightLines(w *ecs.World, screen *ebiten.Image, v view) {
	ecs.ForEach2(w, component.AIContextComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, ctx *component.AIContext, t *component.Transform) {
		clr := color.Color(colornames.Grey)
		if ctx.CanSeePlayer {
			clr = colornames.Red
		}
		x0, y0 := v.toScreen32(t.X, t.Y)
		x1, y1 := v.toScreen32(ctx.LastSeenX, ctx.LastSeenY)
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, clr, true)

		if state, ok := ecs.Get(w, e, component.AIStateComponent.Kind()); ok && r.face != nil {
			op := &text.DrawOptions{}
			op.GeoM.Translate(float64(x0)-12, float64(y0)-28)
			op.ColorScale.ScaleWithColor(colornames.Lightgrey)
			text.Draw(screen, string(state.Current), r.face, op)
		}
	})
}

func (r *RenderSystem) drawHUD(w *ecs.World, screen *ebiten.Image) {
	if r.face == nil {
		return
	}

	playerHealth := 0.0
	if player, ok := w.First(component.PlayerTagComponent.Kind()); ok {
		if h, ok := ecs.Get(w, player, component.HealthComponent.Kind()); ok {
			playerHealth = h.Current
		}
	}
	enemies := len(w.Query(component.EnemyTagComponent.Kind()))

	op := &text.DrawOptions{}
	op.GeoM.Translate(8, 8)
	op.ColorScale.ScaleWithColor(colornames.White)
	text.Draw(screen, fmt.Sprintf("HP %.0f   enemies %d", playerHealth, enemies), r.face, op)
}
