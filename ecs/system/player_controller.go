package system

import (
	"log"
	"math"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/ecs/entity"
	"github.com/milk9111/stalker/prefabs"
)

// PlayerControllerSystem turns Input into player velocity and shots.
type PlayerControllerSystem struct {
	shotSpecs map[string]*prefabs.ShotSpec
}

func NewPlayerControllerSystem() *PlayerControllerSystem {
	return &PlayerControllerSystem{shotSpecs: make(map[string]*prefabs.ShotSpec)}
}

func (p *PlayerControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	entities := w.Query(
		component.PlayerTagComponent.Kind(),
		component.PlayerComponent.Kind(),
		component.InputComponent.Kind(),
		component.TransformComponent.Kind(),
	)
	for _, e := range entities {
		input, ok := ecs.Get(w, e, component.InputComponent.Kind())
		if !ok {
			continue
		}
		player, ok := ecs.Get(w, e, component.PlayerComponent.Kind())
		if !ok {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}

		vx := input.MoveX * player.MoveSpeed
		vy := input.MoveY * player.MoveSpeed
		if bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok && bodyComp.Body != nil {
			vel := bodyComp.Body.Velocity()
			vel.X = vx
			vel.Y = vy
			bodyComp.Body.SetVelocityVector(vel)
		} else {
			dt := w.Clock().Delta
			transform.X += vx * dt
			transform.Y += vy * dt
		}

		if dx, dy, ok := common.Normalize(input.AimX-transform.X, input.AimY-transform.Y); ok {
			transform.Rotation = math.Atan2(dy, dx)
		}

		if input.Shoot {
			p.shoot(w, e, transform, input)
		}
	}
}

func (p *PlayerControllerSystem) shoot(w *ecs.World, e ecs.Entity, transform *component.Transform, input *component.Input) {
	shooter, ok := ecs.Get(w, e, component.ShooterComponent.Kind())
	if !ok || w.Now() < shooter.ReadyAt {
		return
	}

	dx, dy, ok := common.Normalize(input.AimX-transform.X, input.AimY-transform.Y)
	if !ok {
		return
	}

	spec, err := p.shotSpec(shooter.Prefab)
	if err != nil {
		log.Printf("player: load shot %q: %v", shooter.Prefab, err)
		shooter.ReadyAt = w.Now() + shooter.Cooldown
		return
	}

	x := transform.X + dx*shooter.SpawnAhead
	y := transform.Y + dy*shooter.SpawnAhead
	if _, err := entity.NewShot(w, x, y, dx*shooter.Speed, dy*shooter.Speed, spec); err != nil {
		log.Printf("player: spawn shot: %v", err)
		return
	}
	shooter.ReadyAt = w.Now() + shooter.Cooldown
	requestSound(w, e, "shoot")
}

func (p *PlayerControllerSystem) shotSpec(name string) (*prefabs.ShotSpec, error) {
	if p.shotSpecs == nil {
		p.shotSpecs = make(map[string]*prefabs.ShotSpec)
	}
	if spec, ok := p.shotSpecs[name]; ok {
		return spec, nil
	}
	spec, err := prefabs.LoadShotSpec(name)
	if err != nil {
		return nil, err
	}
	p.shotSpecs[name] = spec
	return spec, nil
}

// Reload drops cached shot prefabs.
func (p *PlayerControllerSystem) Reload() {
	p.shotSpecs = make(map[string]*prefabs.ShotSpec)
}
