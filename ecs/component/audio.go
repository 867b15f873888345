package component

// SoundPlayer is the subset of an audio player the audio system drives.
// *audio.Player from ebiten satisfies it.
type SoundPlayer interface {
	Play()
	Rewind() error
	SetVolume(volume float64)
}

// Audio holds named one-shot sounds. Systems request a sound by setting
// Play[i]; the audio system starts it and clears the flag.
type Audio struct {
	Names   []string
	Players []SoundPlayer
	Volume  []float64
	Play    []bool
}

var AudioComponent = NewComponent[Audio]()
