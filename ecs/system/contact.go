package system

import (
	"log"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

// ContactSystem applies the side effects of collision events queued by the
// physics step: shots hurting enemies, enemies attacking the player and
// wall contact tracking.
type ContactSystem struct{}

func NewContactSystem() *ContactSystem {
	return &ContactSystem{}
}

func (s *ContactSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	for _, evt := range w.Events().Take(ecs.EventCollision) {
		ce, ok := evt.Data.(ecs.CollisionEvent)
		if !ok {
			continue
		}
		if !w.IsAlive(ce.Entity) || !w.IsAlive(ce.Other) {
			continue
		}

		switch ce.Kind {
		case ecs.CollisionTriggerEnter:
			s.handleTrigger(w, ce.Entity, ce.Other)
		case ecs.CollisionStay:
			s.handleAttack(w, ce.Entity, ce.Other)
		case ecs.CollisionEnter:
			s.handleWall(w, ce.Entity, ce.Other, true)
		case ecs.CollisionExit:
			s.handleWall(w, ce.Entity, ce.Other, false)
		}
	}
}

func (s *ContactSystem) handleTrigger(w *ecs.World, e, other ecs.Entity) {
	if ecs.Has(w, e, component.ShotComponent.Kind()) && ecs.Has(w, other, component.WallTagComponent.Kind()) {
		ecs.DestroyEntity(w, e)
		return
	}

	ai, ok := ecs.Get(w, e, component.AIComponent.Kind())
	if !ok {
		return
	}
	shot, ok := ecs.Get(w, other, component.ShotComponent.Kind())
	if !ok || shot.EnemyShot {
		return
	}

	if shot.HitSound != "" {
		// a fatal hit destroys e before the audio system runs
		if a, ok := ecs.Get(w, e, component.AudioComponent.Kind()); ok && fatalHit(w, e, shot.Damage) {
			playSoundNow(a, shot.HitSound)
		} else {
			requestSound(w, e, shot.HitSound)
		}
	}

	if ecs.Has(w, e, component.KnockbackableComponent.Kind()) {
		vx, vy := shotVelocity(w, other)
		dt := w.Clock().Delta
		if dt <= 0 {
			dt = ecs.DefaultTimeStep
		}
		// the knockback is a force applied for one step
		_ = ecs.Add(w, e, component.DamageKnockbackRequestComponent.Kind(), &component.DamageKnockback{
			ImpulseX: ai.ShotKnockback * vx * dt,
			ImpulseY: ai.ShotKnockback * vy * dt,
		})
	}

	damage := shot.Damage
	ecs.DestroyEntity(w, other)
	if !Hit(w, e, damage) {
		startHitFlash(w, e)
	}
}

func (s *ContactSystem) handleAttack(w *ecs.World, e, other ecs.Entity) {
	ai, ok := ecs.Get(w, e, component.AIComponent.Kind())
	if !ok {
		return
	}
	ctx, ok := ecs.Get(w, e, component.AIContextComponent.Kind())
	if !ok {
		return
	}
	health, ok := ecs.Get(w, other, component.HealthComponent.Kind())
	if !ok || health.IsEnemy {
		return
	}
	if !takeAttack(ctx) {
		return
	}

	requestSound(w, e, "attack")
	_ = ecs.Add(w, e, component.CooldownComponent.Kind(), &component.Cooldown{ReadyAt: w.Now() + ai.AttackCooldown})
	if common.Debug {
		log.Printf("contact: entity=%s attacks %s for %.1f", e, other, ai.Damage)
	}
	if !Hit(w, other, ai.Damage) {
		_ = ecs.Add(w, other, component.HitFreezeRequestComponent.Kind(), &component.HitFreezeRequest{Frames: playerHitFreezeFrames})
		startHitFlash(w, other)
	}
}

func (s *ContactSystem) handleWall(w *ecs.World, e, other ecs.Entity, touching bool) {
	ctx, ok := ecs.Get(w, e, component.AIContextComponent.Kind())
	if !ok {
		return
	}
	if !ecs.Has(w, other, component.WallTagComponent.Kind()) {
		return
	}
	markWallContact(ctx, touching)
}

func fatalHit(w *ecs.World, e ecs.Entity, damage float64) bool {
	h, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	return ok && h.Current-damage <= 0
}

func shotVelocity(w *ecs.World, shot ecs.Entity) (float64, float64) {
	body, ok := ecs.Get(w, shot, component.PhysicsBodyComponent.Kind())
	if !ok {
		return 0, 0
	}
	if body.Body != nil {
		v := body.Body.Velocity()
		return v.X, v.Y
	}
	return body.InitialVX, body.InitialVY
}
