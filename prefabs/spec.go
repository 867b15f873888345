package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type EnemySpec struct {
	Name        string          `yaml:"name"`
	AI          AISpec          `yaml:"ai"`
	Health      float64         `yaml:"health"`
	Script      string          `yaml:"script"`
	FSMFile     string          `yaml:"fsm_file"`
	FSM         FSMSpec         `yaml:"fsm"`
	Mover       MoverSpec       `yaml:"mover"`
	Collider    ColliderSpec    `yaml:"collider"`
	Shape       ShapeSpec       `yaml:"shape"`
	RenderLayer RenderLayerSpec `yaml:"render_layer"`
	Audio       []AudioSpec     `yaml:"audio"`
}

// AISpec holds the enemy tunables. Zero fields take the defaults from
// DefaultAISpec.
type AISpec struct {
	ChaseSpeed           float64 `yaml:"chase_speed"`
	IdleSpeed            float64 `yaml:"idle_speed"`
	TurnSpeed            float64 `yaml:"turn_speed"`
	Damage               float64 `yaml:"damage"`
	SeekInterval         float64 `yaml:"seek_interval"`
	SeekIntervalChasing  float64 `yaml:"seek_interval_chasing"`
	AttackCooldown       float64 `yaml:"attack_cooldown"`
	ShotKnockback        float64 `yaml:"shot_knockback"`
	WanderDistance       float64 `yaml:"wander_distance"`
	ArriveDistance       float64 `yaml:"arrive_distance"`
	WanderArriveDistance float64 `yaml:"wander_arrive_distance"`
}

func DefaultAISpec() AISpec {
	return AISpec{
		ChaseSpeed:           6,
		IdleSpeed:            3,
		TurnSpeed:            6,
		Damage:               1,
		SeekInterval:         0.5,
		SeekIntervalChasing:  0.2,
		AttackCooldown:       1.0,
		ShotKnockback:        10,
		WanderDistance:       2,
		ArriveDistance:       0.1,
		WanderArriveDistance: 0.2,
	}
}

// WithDefaults fills zero fields from DefaultAISpec.
func (s AISpec) WithDefaults() AISpec {
	d := DefaultAISpec()
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&s.ChaseSpeed, d.ChaseSpeed)
	fill(&s.IdleSpeed, d.IdleSpeed)
	fill(&s.TurnSpeed, d.TurnSpeed)
	fill(&s.Damage, d.Damage)
	fill(&s.SeekInterval, d.SeekInterval)
	fill(&s.SeekIntervalChasing, d.SeekIntervalChasing)
	fill(&s.AttackCooldown, d.AttackCooldown)
	fill(&s.ShotKnockback, d.ShotKnockback)
	fill(&s.WanderDistance, d.WanderDistance)
	fill(&s.ArriveDistance, d.ArriveDistance)
	fill(&s.WanderArriveDistance, d.WanderArriveDistance)
	return s
}

func LoadEnemySpec() (*EnemySpec, error) {
	return LoadEnemyPrefab("enemy.yaml")
}

// LoadEnemyPrefab loads an enemy variant such as sentry.yaml.
func LoadEnemyPrefab(name string) (*EnemySpec, error) {
	if name == "" {
		name = "enemy.yaml"
	}
	spec, err := LoadSpec[EnemySpec](name)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type PlayerSpec struct {
	Name        string          `yaml:"name"`
	MoveSpeed   float64         `yaml:"move_speed"`
	Health      float64         `yaml:"health"`
	Shooter     ShooterSpec     `yaml:"shooter"`
	Collider    ColliderSpec    `yaml:"collider"`
	Shape       ShapeSpec       `yaml:"shape"`
	RenderLayer RenderLayerSpec `yaml:"render_layer"`
	Audio       []AudioSpec     `yaml:"audio"`
}

func LoadPlayerSpec() (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec]("player.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type ShotSpec struct {
	Name        string          `yaml:"name"`
	Damage      float64         `yaml:"damage"`
	EnemyShot   bool            `yaml:"enemy_shot"`
	HitSound    string          `yaml:"hit_sound"`
	TTL         float64         `yaml:"ttl"`
	Collider    ColliderSpec    `yaml:"collider"`
	Shape       ShapeSpec       `yaml:"shape"`
	RenderLayer RenderLayerSpec `yaml:"render_layer"`
}

func LoadShotSpec(name string) (*ShotSpec, error) {
	if name == "" {
		name = "shot.yaml"
	}
	spec, err := LoadSpec[ShotSpec](name)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type ShooterSpec struct {
	Prefab     string  `yaml:"prefab"`
	Speed      float64 `yaml:"speed"`
	Cooldown   float64 `yaml:"cooldown"`
	SpawnAhead float64 `yaml:"spawn_ahead"`
}

type MoverSpec struct {
	Accel float64 `yaml:"accel"`
}

// AudioSpec names a clip. File loads an embedded asset; without one a
// square tone of Tone Hz lasting Duration seconds is synthesized.
type AudioSpec struct {
	Name     string  `yaml:"name"`
	File     string  `yaml:"file"`
	Tone     float64 `yaml:"tone"`
	Duration float64 `yaml:"duration"`
	Volume   float64 `yaml:"volume"`
}

// FSMSpec is an inline state machine. Each transitions entry is either a
// map of event to state or a list of single-key maps; a key naming a
// condition such as lost_player takes {to, arg} instead of a state.
type FSMSpec struct {
	Initial     string                  `yaml:"initial"`
	States      map[string]FSMStateSpec `yaml:"states"`
	Transitions map[string]any          `yaml:"transitions"`
}

func (s FSMSpec) Empty() bool {
	return s.Initial == "" && len(s.States) == 0
}

type FSMStateSpec struct {
	OnEnter []map[string]any `yaml:"on_enter"`
	While   []map[string]any `yaml:"while"`
	OnExit  []map[string]any `yaml:"on_exit"`
}

type RenderLayerSpec struct {
	Index int `yaml:"index"`
}

type ColliderSpec struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Radius     float64 `yaml:"radius"`
	Mass       float64 `yaml:"mass"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
	Sensor     bool    `yaml:"sensor"`
}

type ShapeSpec struct {
	Color      *YAMLColor `yaml:"color"`
	IdleColor  *YAMLColor `yaml:"idle_color"`
	ShowFacing bool       `yaml:"show_facing"`
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// Or returns the wrapped color, or def when unset.
func (c *YAMLColor) Or(def color.Color) color.Color {
	if c == nil || c.Color == nil {
		return def
	}
	return c.Color
}
