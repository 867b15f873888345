package entity

import (
	"fmt"
	"image/color"

	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/levels"
)

var wallColor = color.NRGBA{R: 0x4b, G: 0x55, B: 0x63, A: 0xff}

// NewWall creates a static wall covering r. The transform sits at the
// rectangle's center.
func NewWall(w *ecs.World, r levels.Rect) (ecs.Entity, error) {
	if r.W <= 0 || r.H <= 0 {
		return ecs.Entity{}, fmt.Errorf("wall: size %vx%v: %w", r.W, r.H, ErrInvalidTunable)
	}

	e := ecs.CreateEntity(w)
	err := func() error {
		if err := ecs.Add(w, e, component.WallTagComponent.Kind(), &component.WallTag{}); err != nil {
			return fmt.Errorf("wall: add wall tag: %w", err)
		}
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
			X:      r.X + r.W/2,
			Y:      r.Y + r.H/2,
			ScaleX: 1,
			ScaleY: 1,
		}); err != nil {
			return fmt.Errorf("wall: add transform: %w", err)
		}
		if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
			Width:    r.W,
			Height:   r.H,
			Static:   true,
			Friction: 0.5,
		}); err != nil {
			return fmt.Errorf("wall: add physics body: %w", err)
		}
		if err := ecs.Add(w, e, component.ShapeComponent.Kind(), &component.Shape{Color: wallColor}); err != nil {
			return fmt.Errorf("wall: add shape: %w", err)
		}
		if err := ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: 0}); err != nil {
			return fmt.Errorf("wall: add render layer: %w", err)
		}
		return nil
	}()
	if err != nil {
		ecs.DestroyEntity(w, e)
		return ecs.Entity{}, err
	}
	return e, nil
}
