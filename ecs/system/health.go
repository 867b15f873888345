package system

import (
	"log"

	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

// Hit subtracts damage from e's health and removes e once health is at or
// below zero. It reports whether e was removed.
func Hit(w *ecs.World, e ecs.Entity, damage float64) bool {
	health, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	if !ok {
		return false
	}
	health.Current -= damage
	if health.Current > 0 {
		return false
	}
	removeTarget(w, e)
	return true
}

// HealthSystem removes any entity whose health is at or below zero.
type HealthSystem struct{}

func NewHealthSystem() *HealthSystem {
	return &HealthSystem{}
}

func (s *HealthSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.HealthComponent.Kind(), func(e ecs.Entity, h *component.Health) {
		if h.Current <= 0 {
			removeTarget(w, e)
		}
	})
}

func removeTarget(w *ecs.World, e ecs.Entity) {
	if a, ok := ecs.Get(w, e, component.AudioComponent.Kind()); ok {
		playSoundNow(a, "death")
	}
	log.Printf("health: entity=%s destroyed", e)
	ecs.DestroyEntity(w, e)
}
