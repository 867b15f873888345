package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

// moverEpsilon is the distance under which a mover counts as arrived and
// keeps its previous direction.
const moverEpsilon = 1e-4

// MovementSystem is the movement provider. Active movers are driven
// towards their target at their speed without overshooting it.
type MovementSystem struct{}

func NewMovementSystem() *MovementSystem {
	return &MovementSystem{}
}

func (s *MovementSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Clock().Delta
	if dt <= 0 {
		return
	}

	ecs.ForEach2(w, component.MoverComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, m *component.Mover, t *component.Transform) {
		vx, vy := 0.0, 0.0
		if m.Active {
			dx := m.TargetX - t.X
			dy := m.TargetY - t.Y
			dist := math.Hypot(dx, dy)
			if dist > moverEpsilon {
				m.DirX = dx / dist
				m.DirY = dy / dist
				speed := math.Min(m.Speed, dist/dt)
				vx = m.DirX * speed
				vy = m.DirY * speed
			}
		}

		body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if ok && body.Body != nil && !body.Static {
			steerBody(body.Body, vx, vy, m.Accel, dt)
			return
		}

		t.X += vx * dt
		t.Y += vy * dt
	})
}

// steerBody moves the body velocity towards (vx, vy). With accel > 0 the
// change per step is limited, so impulses fade out over a few frames.
func steerBody(b *cp.Body, vx, vy, accel, dt float64) {
	if accel <= 0 {
		b.SetVelocityVector(cp.Vector{X: vx, Y: vy})
		return
	}
	v := b.Velocity()
	dvx := vx - v.X
	dvy := vy - v.Y
	dv := math.Hypot(dvx, dvy)
	maxDv := accel * dt
	if dv > maxDv {
		dvx *= maxDv / dv
		dvy *= maxDv / dv
	}
	b.SetVelocityVector(cp.Vector{X: v.X + dvx, Y: v.Y + dvy})
}

// moveTowards is the MoveTowards call of the movement provider. The
// direction updates immediately so facing can follow it in the same frame.
func moveTowards(m *component.Mover, fromX, fromY, x, y, speed float64) {
	if m == nil {
		return
	}
	m.TargetX = x
	m.TargetY = y
	m.Speed = speed
	m.Active = true
	if nx, ny, ok := common.Normalize(x-fromX, y-fromY); ok && common.Distance(fromX, fromY, x, y) > moverEpsilon {
		m.DirX = nx
		m.DirY = ny
	}
}

func stopMover(m *component.Mover) {
	if m == nil {
		return
	}
	m.Active = false
}
