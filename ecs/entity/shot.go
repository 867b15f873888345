package entity

import (
	"fmt"
	"image/color"

	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/prefabs"
)

// NewShot spawns a projectile at x, y moving at vx, vy units per second.
func NewShot(w *ecs.World, x, y, vx, vy float64, shotSpec *prefabs.ShotSpec) (ecs.Entity, error) {
	if shotSpec == nil {
		return ecs.Entity{}, fmt.Errorf("shot: nil spec: %w", ErrInvalidTunable)
	}
	if shotSpec.Damage < 0 {
		return ecs.Entity{}, fmt.Errorf("shot: damage %v: %w", shotSpec.Damage, ErrInvalidTunable)
	}

	e := ecs.CreateEntity(w)
	err := func() error {
		if err := ecs.Add(w, e, component.ShotComponent.Kind(), &component.Shot{
			Damage:    shotSpec.Damage,
			EnemyShot: shotSpec.EnemyShot,
			HitSound:  shotSpec.HitSound,
		}); err != nil {
			return fmt.Errorf("shot: add shot: %w", err)
		}

		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}); err != nil {
			return fmt.Errorf("shot: add transform: %w", err)
		}

		body := physicsBodyFromSpec(shotSpec.Collider, false)
		body.Sensor = true
		body.InitialVX = vx
		body.InitialVY = vy
		if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), body); err != nil {
			return fmt.Errorf("shot: add physics body: %w", err)
		}

		// enemy shots only stop on walls
		if shotSpec.EnemyShot {
			if err := ecs.Add(w, e, component.CollisionLayerComponent.Kind(), &component.CollisionLayer{
				Category: component.LayerShot,
				Mask:     component.LayerWall,
			}); err != nil {
				return fmt.Errorf("shot: add collision layer: %w", err)
			}
		}

		if shotSpec.TTL > 0 {
			if err := ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{ExpiresAt: w.Now() + shotSpec.TTL}); err != nil {
				return fmt.Errorf("shot: add ttl: %w", err)
			}
		}

		if err := ecs.Add(w, e, component.ShapeComponent.Kind(), &component.Shape{
			Color: shotSpec.Shape.Color.Or(color.NRGBA{R: 0xf1, G: 0xc4, B: 0x0f, A: 0xff}),
		}); err != nil {
			return fmt.Errorf("shot: add shape: %w", err)
		}

		if err := ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: shotSpec.RenderLayer.Index}); err != nil {
			return fmt.Errorf("shot: add render layer: %w", err)
		}
		return nil
	}()
	if err != nil {
		ecs.DestroyEntity(w, e)
		return ecs.Entity{}, err
	}
	return e, nil
}
