package entity

import (
	"fmt"

	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/prefabs"
)

// SoundLoader turns prefab clip specs into players. assets.Sounds is the
// real implementation; a nil loader builds entities without audio.
type SoundLoader interface {
	LoadSound(spec prefabs.AudioSpec) (component.SoundPlayer, error)
}

func buildAudioComponent(loader SoundLoader, audioSpecs []prefabs.AudioSpec) (*component.Audio, error) {
	n := len(audioSpecs)
	if n == 0 || loader == nil {
		return nil, nil
	}

	names := make([]string, 0, n)
	players := make([]component.SoundPlayer, 0, n)
	volume := make([]float64, 0, n)

	for i, clip := range audioSpecs {
		player, err := loader.LoadSound(clip)
		if err != nil {
			return nil, fmt.Errorf("audio clip %d (%q): %w", i, clip.Name, err)
		}
		vol := clip.Volume
		if vol <= 0 {
			vol = 1
		}
		names = append(names, clip.Name)
		players = append(players, player)
		volume = append(volume, vol)
	}

	return &component.Audio{
		Names:   names,
		Players: players,
		Volume:  volume,
		Play:    make([]bool, n),
	}, nil
}
