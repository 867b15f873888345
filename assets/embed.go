package assets

import (
	"bytes"
	"embed"
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/prefabs"
)

//go:embed *.wav
var assetsFS embed.FS

const sampleRate = 44100

var (
	audioOnce    sync.Once
	audioContext *audio.Context
)

// sharedContext returns the shared audio context, creating it on first use so
// importing this package never opens an audio device.
func sharedContext() *audio.Context {
	audioOnce.Do(func() {
		if c := audio.CurrentContext(); c != nil {
			audioContext = c
			return
		}
		audioContext = audio.NewContext(sampleRate)
	})
	return audioContext
}

// LoadFile loads an embedded asset by assets-relative path.
func LoadFile(path string) ([]byte, error) {
	clean := cleanAssetPath(path)
	return assetsFS.ReadFile(clean)
}

// LoadAudioPlayer loads an embedded audio asset and creates an audio player.
func LoadAudioPlayer(path string) (*audio.Player, error) {
	b, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	ctx := sharedContext()
	clean := strings.ToLower(cleanAssetPath(path))
	if strings.HasSuffix(clean, ".wav") {
		stream, err := wav.DecodeWithSampleRate(ctx.SampleRate(), bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("decode wav %q: %w", path, err)
		}
		return ctx.NewPlayer(stream)
	}

	// Fallback for already-decoded PCM assets in Ebiten's native format.
	return ctx.NewPlayerFromBytes(b), nil
}

// TonePlayer synthesizes a short square wave blip.
func TonePlayer(freq, seconds float64) *audio.Player {
	return sharedContext().NewPlayerFromBytes(SquareTone(freq, seconds, sampleRate))
}

// SquareTone renders a square wave with a linear fade out as 16-bit stereo
// little endian PCM.
func SquareTone(freq, seconds float64, rate int) []byte {
	if freq <= 0 || seconds <= 0 || rate <= 0 {
		return nil
	}
	n := int(seconds * float64(rate))
	buf := make([]byte, n*4)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(rate)
		amp := 0.3 * (1 - float64(i)/float64(n))
		if math.Sin(2*math.Pi*freq*t) < 0 {
			amp = -amp
		}
		v := uint16(int16(amp * math.MaxInt16))
		binary.LittleEndian.PutUint16(buf[i*4:], v)
		binary.LittleEndian.PutUint16(buf[i*4+2:], v)
	}
	return buf
}

// Sounds builds audio players from prefab clip specs.
type Sounds struct{}

func (Sounds) LoadSound(spec prefabs.AudioSpec) (component.SoundPlayer, error) {
	if spec.File != "" {
		return LoadAudioPlayer(spec.File)
	}
	if spec.Tone <= 0 {
		return nil, fmt.Errorf("clip %q: no file and no tone", spec.Name)
	}
	duration := spec.Duration
	if duration <= 0 {
		duration = 0.1
	}
	return TonePlayer(spec.Tone, duration), nil
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		s := filepath.ToSlash(path)
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return filepath.Base(path)
	}
	s := filepath.ToSlash(path)
	if strings.HasPrefix(s, "assets/") {
		return strings.TrimPrefix(s, "assets/")
	}
	return s
}
