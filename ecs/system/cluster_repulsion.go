package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

// ClusterRepulsionSystem pushes enemies apart so a pack converging on the
// same last seen position does not collapse into one spot.
type ClusterRepulsionSystem struct {
	// Radius in world units below which two enemies repel.
	Radius float64
	// Strength is the impulse at zero distance.
	Strength float64
}

func NewClusterRepulsionSystem() *ClusterRepulsionSystem {
	return &ClusterRepulsionSystem{
		Radius:   0.9,
		Strength: 1.5,
	}
}

func (cr *ClusterRepulsionSystem) Update(w *ecs.World) {
	if cr == nil || w == nil || cr.Radius <= 0 {
		return
	}

	type entInfo struct {
		e    ecs.Entity
		body *component.PhysicsBody
		tr   *component.Transform
	}

	list := make([]entInfo, 0)
	for _, e := range w.Query(component.EnemyTagComponent.Kind(), component.TransformComponent.Kind()) {
		tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		body, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if body != nil && body.Static {
			continue
		}
		list = append(list, entInfo{e: e, body: body, tr: tr})
	}

	n := len(list)
	if n < 2 {
		return
	}
	dt := w.Clock().Delta

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			bi := list[i]
			bj := list[j]

			// vector from j to i
			dx := bi.tr.X - bj.tr.X
			dy := bi.tr.Y - bj.tr.Y
			dist := math.Hypot(dx, dy)
			if dist >= cr.Radius {
				continue
			}
			nx, ny := 1.0, 0.0
			if dist > 1e-9 {
				nx, ny = dx/dist, dy/dist
			}

			// linear falloff with overlap, half to each side
			mag := cr.Strength * (cr.Radius - dist) / cr.Radius * 0.5
			repel(bi.body, bi.tr, nx*mag, ny*mag, dt)
			repel(bj.body, bj.tr, -nx*mag, -ny*mag, dt)
		}
	}
}

func repel(body *component.PhysicsBody, tr *component.Transform, ix, iy, dt float64) {
	if body != nil && body.Body != nil {
		body.Body.ApplyImpulseAtWorldPoint(cp.Vector{X: ix, Y: iy}, body.Body.Position())
		return
	}
	mass := 1.0
	if body != nil && body.Mass > 0 {
		mass = body.Mass
	}
	tr.X += ix / mass * dt
	tr.Y += iy / mass * dt
}
