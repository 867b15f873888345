package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

// knockbackMaxDeltaV caps the velocity change of a single knockback so
// stacked hits don't launch the entity.
const knockbackMaxDeltaV = 12.0

// DamageKnockbackSystem applies queued DamageKnockback requests to
// Knockbackable entities and removes them.
type DamageKnockbackSystem struct{}

func NewDamageKnockbackSystem() *DamageKnockbackSystem {
	return &DamageKnockbackSystem{}
}

func (s *DamageKnockbackSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.DamageKnockbackRequestComponent.Kind(), func(e ecs.Entity, req *component.DamageKnockback) {
		ix, iy := req.ImpulseX, req.ImpulseY
		_ = ecs.Remove(w, e, component.DamageKnockbackRequestComponent.Kind())
		if !ecs.Has(w, e, component.KnockbackableComponent.Kind()) {
			return
		}
		applyKnockback(w, e, ix, iy)
	})
}

func applyKnockback(w *ecs.World, target ecs.Entity, ix, iy float64) {
	mag := math.Hypot(ix, iy)
	if mag <= 1e-9 {
		return
	}

	body, ok := ecs.Get(w, target, component.PhysicsBodyComponent.Kind())
	if ok && body.Static {
		return
	}
	if ok && body.Body != nil {
		body.Body.ApplyImpulseAtWorldPoint(cp.Vector{X: ix, Y: iy}, body.Body.Position())

		// Cap the velocity gained along the impulse direction.
		nx, ny := ix/mag, iy/mag
		v := body.Body.Velocity()
		vDot := v.X*nx + v.Y*ny
		if vDot > knockbackMaxDeltaV {
			tx := v.X - nx*vDot
			ty := v.Y - ny*vDot
			body.Body.SetVelocityVector(cp.Vector{
				X: tx + nx*knockbackMaxDeltaV,
				Y: ty + ny*knockbackMaxDeltaV,
			})
		}
		return
	}

	t, ok := ecs.Get(w, target, component.TransformComponent.Kind())
	if !ok {
		return
	}
	mass := 1.0
	if body != nil && body.Mass > 0 {
		mass = body.Mass
	}
	dt := w.Clock().Delta
	t.X += ix / mass * dt
	t.Y += iy / mass * dt
}
