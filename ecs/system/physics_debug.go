package system

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

const (
	debugStroke  = 1
	debugDotSize = 0.05
)

// PhysicsDebugSystem overlays collision shapes and AI state while
// common.Debug is set.
type PhysicsDebugSystem struct {
	physics *PhysicsSystem
	// Scale is pixels per world unit. Zero means common.PixelsPerUnit.
	Scale float64
}

func NewPhysicsDebugSystem(physics *PhysicsSystem) *PhysicsDebugSystem {
	return &PhysicsDebugSystem{physics: physics}
}

func (s *PhysicsDebugSystem) Update(w *ecs.World) {}

func (s *PhysicsDebugSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if s == nil || !common.Debug {
		return
	}
	if s.physics != nil {
		DrawPhysicsDebug(s.physics.Space(), screen, levelView(w, s.Scale))
	}
	DrawEnemyStateDebug(w, screen)
}

func DrawPhysicsDebug(space *cp.Space, screen *ebiten.Image, v view) {
	if space == nil || screen == nil {
		return
	}
	cp.DrawSpace(space, &physicsDebugDrawer{screen: screen, view: v})
}

// DrawEnemyStateDebug prints one line per enemy with its FSM state and
// perception flags.
func DrawEnemyStateDebug(w *ecs.World, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	var b strings.Builder
	for _, e := range w.Query(component.AIStateComponent.Kind(), component.AIContextComponent.Kind()) {
		state, ok := ecs.Get(w, e, component.AIStateComponent.Kind())
		if !ok {
			continue
		}
		ctx, ok := ecs.Get(w, e, component.AIContextComponent.Kind())
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s %-6s see=%t attack=%t wall=%t last=(%.1f, %.1f)\n",
			e, state.Current, ctx.CanSeePlayer, ctx.CanAttack, ctx.HitWall, ctx.LastSeenX, ctx.LastSeenY)
	}
	ebitenutil.DebugPrintAt(screen, b.String(), 10, 28)
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	view   view
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	cx, cy := d.view.toScreen32(pos.X, pos.Y)
	vector.StrokeCircle(d.screen, cx, cy, float32(radius*d.view.scale), debugStroke, toNRGBA(outline), true)
	d.line(pos, pos.Add(cp.ForAngle(angle).Mult(radius)), outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	ax, ay := d.view.toScreen32(a.X, a.Y)
	bx, by := d.view.toScreen32(b.X, b.Y)
	width := float32(2 * radius * d.view.scale)
	if width < debugStroke {
		width = debugStroke
	}
	vector.StrokeLine(d.screen, ax, ay, bx, by, width, toNRGBA(outline), true)
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count > len(verts) {
		count = len(verts)
	}
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], outline)
	}
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	x, y := d.view.toScreen32(pos.X, pos.Y)
	vector.FillCircle(d.screen, x, y, float32(debugDotSize*d.view.scale), toNRGBA(fill), true)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_COLLISION_POINTS
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) line(a, b cp.Vector, c cp.FColor) {
	ax, ay := d.view.toScreen32(a.X, a.Y)
	bx, by := d.view.toScreen32(b.X, b.Y)
	vector.StrokeLine(d.screen, ax, ay, bx, by, debugStroke, toNRGBA(c), true)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(common.Clamp01(float64(c.R)) * 255),
		G: uint8(common.Clamp01(float64(c.G)) * 255),
		B: uint8(common.Clamp01(float64(c.B)) * 255),
		A: uint8(common.Clamp01(float64(c.A)) * 255),
	}
}
