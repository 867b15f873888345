package levels

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

// Level is a tile grid in world units: one tile is one unit. Layers are
// row-major Width*Height grids; a non-zero tile in a physics layer is a
// wall.
type Level struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
	Entities  []Entity    `json:"entities,omitempty"`
}

type LayerMeta struct {
	Physics bool `json:"physics"`
}

// Entity is a spawn point. X and Y are tile coordinates; the entity spawns
// at the tile center.
type Entity struct {
	Type  string                 `json:"type"`
	X     int                    `json:"x"`
	Y     int                    `json:"y"`
	Props map[string]interface{} `json:"props,omitempty"`
}

// Rect is an axis aligned box in world units.
type Rect struct {
	X, Y, W, H float64
}

func LoadLevelFromFS(name string) (*Level, error) {
	if name == "" {
		name = "arena"
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if err := lvl.validate(); err != nil {
		return nil, fmt.Errorf("level %s: %w", name, err)
	}
	return &lvl, nil
}

func (l *Level) validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", l.Width, l.Height)
	}
	for i, layer := range l.Layers {
		if len(layer) != l.Width*l.Height {
			return fmt.Errorf("layer %d has %d tiles, want %d", i, len(layer), l.Width*l.Height)
		}
	}
	return nil
}

func (l *Level) solid(x, y int) bool {
	for i, layer := range l.Layers {
		if i < len(l.LayerMeta) && !l.LayerMeta[i].Physics {
			continue
		}
		if layer[y*l.Width+x] != 0 {
			return true
		}
	}
	return false
}

// Walls merges horizontal runs of solid tiles into rectangles.
func (l *Level) Walls() []Rect {
	var out []Rect
	for y := 0; y < l.Height; y++ {
		x := 0
		for x < l.Width {
			if !l.solid(x, y) {
				x++
				continue
			}
			start := x
			for x < l.Width && l.solid(x, y) {
				x++
			}
			out = append(out, Rect{X: float64(start), Y: float64(y), W: float64(x - start), H: 1})
		}
	}
	return out
}

// Spawn is a tile-centered spawn position in world units.
type Spawn struct {
	X, Y  float64
	Props map[string]interface{}
}

// Prop returns the string prop key, or "" when it is missing or not a
// string.
func (s Spawn) Prop(key string) string {
	v, _ := s.Props[key].(string)
	return v
}

// SpawnPoints returns the spawns of entities of typ in level order.
func (l *Level) SpawnPoints(typ string) []Spawn {
	var out []Spawn
	for _, e := range l.Entities {
		if e.Type != typ {
			continue
		}
		out = append(out, Spawn{X: float64(e.X) + 0.5, Y: float64(e.Y) + 0.5, Props: e.Props})
	}
	return out
}

// Spawns returns the tile-centered world positions of entities of typ.
func (l *Level) Spawns(typ string) [][2]float64 {
	var out [][2]float64
	for _, s := range l.SpawnPoints(typ) {
		out = append(out, [2]float64{s.X, s.Y})
	}
	return out
}
