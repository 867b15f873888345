package system

import (
	"log"

	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

type AudioSystem struct{}

func NewAudioSystem() *AudioSystem {
	return &AudioSystem{}
}

func (a *AudioSystem) Update(w *ecs.World) {
	ecs.ForEach(w, component.AudioComponent.Kind(), func(_ ecs.Entity, audioComp *component.Audio) {
		count := len(audioComp.Play)
		if len(audioComp.Players) < count {
			count = len(audioComp.Players)
		}

		for i := 0; i < count; i++ {
			if !audioComp.Play[i] {
				continue
			}
			if audioComp.Players[i] != nil {
				startPlayer(audioComp, i)
			}
			audioComp.Play[i] = false
		}
	})
}

// startPlayer restarts clip i from the beginning; one-shots retrigger even
// while still playing.
func startPlayer(a *component.Audio, i int) {
	player := a.Players[i]
	if i < len(a.Volume) {
		player.SetVolume(a.Volume[i])
	}
	if err := player.Rewind(); err != nil {
		log.Printf("audio: rewind %q: %v", a.Names[i], err)
		return
	}
	player.Play()
}
