package system

import (
	"log"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

// requestSound asks the audio system to start the named clip on e. It
// returns false when e has no such clip.
func requestSound(w *ecs.World, e ecs.Entity, name string) bool {
	a, ok := ecs.Get(w, e, component.AudioComponent.Kind())
	if !ok {
		return false
	}
	i := soundIndex(a, name)
	if i < 0 || i >= len(a.Play) {
		if common.Debug {
			log.Printf("audio: entity=%s has no clip %q", e, name)
		}
		return false
	}
	a.Play[i] = true
	return true
}

// playSoundNow starts a clip immediately, for entities about to be
// destroyed before the audio system runs.
func playSoundNow(a *component.Audio, name string) {
	if a == nil {
		return
	}
	i := soundIndex(a, name)
	if i < 0 || i >= len(a.Players) || a.Players[i] == nil {
		return
	}
	startPlayer(a, i)
}

func soundIndex(a *component.Audio, name string) int {
	for i, n := range a.Names {
		if n == name {
			return i
		}
	}
	return -1
}

func setIdleCue(w *ecs.World, e ecs.Entity, idle bool) {
	if anim, ok := ecs.Get(w, e, component.AnimatorComponent.Kind()); ok {
		anim.Idle = idle
	}
}
