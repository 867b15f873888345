package system

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

const (
	collisionTypeWall cp.CollisionType = iota + 1
	collisionTypePlayer
	collisionTypeEnemy
	collisionTypeShot
)

// PhysicsSystem owns the Chipmunk space. It mirrors PhysicsBody components
// into bodies, steps the space and turns collision callbacks into
// CollisionEvents on the world queue. It also answers line of sight queries.
type PhysicsSystem struct {
	space         *cp.Space
	handlersReady bool

	// events collects callbacks during Step; flushed to the world after.
	events []ecs.CollisionEvent

	entities map[ecs.Entity]*bodyInfo
	shapes   map[*cp.Shape]shapeOwner
}

type shapeOwner struct {
	entity ecs.Entity
	ctype  cp.CollisionType
}

type bodyInfo struct {
	body   *cp.Body
	shapes []*cp.Shape
	static bool
}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{
		space:    newSpace(),
		entities: make(map[ecs.Entity]*bodyInfo),
		shapes:   make(map[*cp.Shape]shapeOwner),
	}
}

func newSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{})
	return space
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	if ps.space == nil {
		ps.space = newSpace()
		ps.handlersReady = false
	}

	ps.ensureHandlers()
	ps.syncEntities(w)

	dt := w.Clock().Delta
	if dt > 0 {
		ps.space.Step(dt)
	}

	ps.syncTransforms(w)
	ps.flushEvents(w)
}

// LineClear reports whether the segment crosses no shape whose category is
// in mask.
func (ps *PhysicsSystem) LineClear(_ *ecs.World, x0, y0, x1, y1 float64, mask uint) bool {
	if ps == nil || ps.space == nil {
		return true
	}
	filter := cp.NewShapeFilter(0, component.LayerAll, mask)
	info := ps.space.SegmentQueryFirst(cp.Vector{X: x0, Y: y0}, cp.Vector{X: x1, Y: y1}, 0, filter)
	return info.Shape == nil
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	shotHandler := ps.space.NewCollisionHandler(collisionTypeEnemy, collisionTypeShot)
	shotHandler.UserData = ps
	shotHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		enemy, shot, ok := sys.resolve(arb, collisionTypeEnemy)
		if ok {
			sys.events = append(sys.events, ecs.CollisionEvent{Entity: enemy, Other: shot, Kind: ecs.CollisionTriggerEnter})
		}
		return true
	}

	shotWallHandler := ps.space.NewCollisionHandler(collisionTypeShot, collisionTypeWall)
	shotWallHandler.UserData = ps
	shotWallHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shot, wall, ok := sys.resolve(arb, collisionTypeShot)
		if ok {
			sys.events = append(sys.events, ecs.CollisionEvent{Entity: shot, Other: wall, Kind: ecs.CollisionTriggerEnter})
		}
		return true
	}

	playerHandler := ps.space.NewCollisionHandler(collisionTypeEnemy, collisionTypePlayer)
	playerHandler.UserData = ps
	playerHandler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		enemy, player, ok := sys.resolve(arb, collisionTypeEnemy)
		if ok {
			sys.events = append(sys.events, ecs.CollisionEvent{Entity: enemy, Other: player, Kind: ecs.CollisionStay})
		}
		return true
	}

	wallHandler := ps.space.NewCollisionHandler(collisionTypeEnemy, collisionTypeWall)
	wallHandler.UserData = ps
	wallHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		enemy, wall, ok := sys.resolve(arb, collisionTypeEnemy)
		if ok {
			sys.events = append(sys.events, ecs.CollisionEvent{Entity: enemy, Other: wall, Kind: ecs.CollisionEnter})
		}
		return true
	}
	wallHandler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return
		}
		enemy, wall, ok := sys.resolve(arb, collisionTypeEnemy)
		if ok {
			sys.events = append(sys.events, ecs.CollisionEvent{Entity: enemy, Other: wall, Kind: ecs.CollisionExit})
		}
	}

	ps.handlersReady = true
}

// resolve maps the arbiter shapes back to entities, ordered so the shape
// with collision type first comes first.
func (ps *PhysicsSystem) resolve(arb *cp.Arbiter, first cp.CollisionType) (ecs.Entity, ecs.Entity, bool) {
	shapeA, shapeB := arb.Shapes()
	a, okA := ps.shapes[shapeA]
	b, okB := ps.shapes[shapeB]
	if !okA || !okB {
		return ecs.Entity{}, ecs.Entity{}, false
	}
	if a.ctype != first && b.ctype == first {
		a, b = b, a
	}
	return a.entity, b.entity, true
}

func (ps *PhysicsSystem) flushEvents(w *ecs.World) {
	if len(ps.events) == 0 {
		return
	}
	q := w.Events()
	for _, evt := range ps.events {
		q.PushCollision(evt)
	}
	ps.events = ps.events[:0]
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	if ps.space == nil {
		return
	}

	ps.cleanupEntities(w)

	entities := w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind())
	for _, e := range entities {
		if _, ok := ps.entities[e]; ok {
			continue
		}
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if !ok {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}

		ctype, filter := ps.classify(w, e)
		info := ps.createBodyInfo(transform, bodyComp, ctype, filter)
		if info == nil {
			continue
		}

		ps.entities[e] = info
		for _, shape := range info.shapes {
			ps.shapes[shape] = shapeOwner{entity: e, ctype: ctype}
		}
		bodyComp.Body = info.body
		bodyComp.Shape = info.shapes[0]
	}
}

// classify picks the collision type and shape filter from the entity's tags.
// A CollisionLayer component overrides the default filter.
func (ps *PhysicsSystem) classify(w *ecs.World, e ecs.Entity) (cp.CollisionType, cp.ShapeFilter) {
	var ctype cp.CollisionType
	var category, mask uint
	switch {
	case ecs.Has(w, e, component.WallTagComponent.Kind()):
		ctype, category, mask = collisionTypeWall, component.LayerWall, component.LayerAll
	case ecs.Has(w, e, component.PlayerTagComponent.Kind()):
		ctype, category, mask = collisionTypePlayer, component.LayerPlayer, component.LayerWall|component.LayerEnemy
	case ecs.Has(w, e, component.EnemyTagComponent.Kind()):
		ctype, category, mask = collisionTypeEnemy, component.LayerEnemy, component.LayerAll
	case ecs.Has(w, e, component.ShotComponent.Kind()):
		ctype, category, mask = collisionTypeShot, component.LayerShot, component.LayerWall|component.LayerEnemy
	default:
		ctype, category, mask = collisionTypeWall, component.LayerWall, component.LayerAll
	}

	if layer, ok := ecs.Get(w, e, component.CollisionLayerComponent.Kind()); ok {
		if layer.Category != 0 {
			category = layer.Category
		}
		if layer.Mask != 0 {
			mask = layer.Mask
		}
	}
	return ctype, cp.NewShapeFilter(0, category, mask)
}

func (ps *PhysicsSystem) createBodyInfo(transform *component.Transform, bodyComp *component.PhysicsBody, ctype cp.CollisionType, filter cp.ShapeFilter) *bodyInfo {
	width := bodyComp.Width
	height := bodyComp.Height
	radius := bodyComp.Radius

	if radius <= 0 && (width <= 0 || height <= 0) {
		width = 1
		height = 1
	}

	center := cp.Vector{X: transform.X, Y: transform.Y}
	info := &bodyInfo{static: bodyComp.Static}

	var body *cp.Body
	if bodyComp.Static {
		body = ps.space.StaticBody
	} else {
		mass := bodyComp.Mass
		if mass <= 0 {
			mass = 1
		}
		// infinite moment: rotation is the AI's facing, not physics state
		body = cp.NewBody(mass, math.Inf(1))
		body.SetPosition(center)
		body.SetVelocityVector(cp.Vector{X: bodyComp.InitialVX, Y: bodyComp.InitialVY})
		ps.space.AddBody(body)
	}

	var shape *cp.Shape
	switch {
	case bodyComp.Static && radius > 0:
		shape = cp.NewCircle(body, radius, center)
	case bodyComp.Static:
		bb := cp.BB{L: center.X - width/2, B: center.Y - height/2, R: center.X + width/2, T: center.Y + height/2}
		shape = cp.NewBox2(body, bb, 0)
	case radius > 0:
		shape = cp.NewCircle(body, radius, cp.Vector{})
	default:
		shape = cp.NewBox(body, width, height, 0)
	}

	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)
	shape.SetCollisionType(ctype)
	shape.SetFilter(filter)
	shape.SetSensor(bodyComp.Sensor)
	ps.space.AddShape(shape)

	info.body = body
	info.shapes = []*cp.Shape{shape}

	if common.Debug {
		log.Printf("physics: add body type=%d at (%.2f, %.2f)", ctype, center.X, center.Y)
	}
	return info
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for e, info := range ps.entities {
		if info.static || info.body == nil {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		pos := info.body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
	}
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}

		for _, shape := range info.shapes {
			if shape == nil {
				continue
			}
			ps.space.RemoveShape(shape)
			delete(ps.shapes, shape)
		}
		if info.body != nil && !info.static {
			ps.space.RemoveBody(info.body)
		}

		delete(ps.entities, e)
	}
}
