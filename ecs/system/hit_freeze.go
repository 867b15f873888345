package system

import (
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

// playerHitFreezeFrames is the pause after an enemy lands an attack.
const playerHitFreezeFrames = 4

// HitFreezeSystem collects HitFreezeRequests and reports the longest one to
// the game loop, which skips that many world updates.
type HitFreezeSystem struct {
	onFreeze func(frames int)
}

func NewHitFreezeSystem(onFreeze func(frames int)) *HitFreezeSystem {
	return &HitFreezeSystem{onFreeze: onFreeze}
}

func (s *HitFreezeSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	maxFrames := 0
	ecs.ForEach(w, component.HitFreezeRequestComponent.Kind(), func(e ecs.Entity, req *component.HitFreezeRequest) {
		if req != nil && req.Frames > maxFrames {
			maxFrames = req.Frames
		}
		_ = ecs.Remove(w, e, component.HitFreezeRequestComponent.Kind())
	})

	if maxFrames > 0 && s.onFreeze != nil {
		s.onFreeze(maxFrames)
	}
}
