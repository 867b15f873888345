package system

import (
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

// CooldownSystem removes expired attack cooldowns and re-arms the attack.
type CooldownSystem struct{}

func NewCooldownSystem() *CooldownSystem {
	return &CooldownSystem{}
}

func (s *CooldownSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	now := w.Now()

	ecs.ForEach(w, component.CooldownComponent.Kind(), func(e ecs.Entity, cd *component.Cooldown) {
		if now < cd.ReadyAt {
			return
		}

		_ = ecs.Remove(w, e, component.CooldownComponent.Kind())
		if ctx, ok := ecs.Get(w, e, component.AIContextComponent.Kind()); ok {
			rearmAttack(ctx)
		}
	})
}
