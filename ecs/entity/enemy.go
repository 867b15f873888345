package entity

import (
	"fmt"
	"image/color"

	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/prefabs"
)

const defaultEnemyPrefab = "enemy.yaml"

// AIValidator reports whether an AI config can run. *system.AISystem
// implements it.
type AIValidator interface {
	ValidateAIConfig(cfg *component.AIConfig) error
}

// EnemyConfig places one enemy. Player is the entity it perceives and
// chases; it must be alive and have a Transform.
type EnemyConfig struct {
	X, Y   float64
	Player ecs.Entity
	// Prefab names the enemy prefab file, enemy.yaml when empty. Spec,
	// when set, is used instead of loading it.
	Prefab string
	Spec   *prefabs.EnemySpec
	Sounds SoundLoader
	// Validator rejects enemies whose FSM or script cannot run. Nil skips
	// the check.
	Validator AIValidator
}

func NewEnemy(w *ecs.World, cfg EnemyConfig) (ecs.Entity, error) {
	if cfg.Prefab == "" {
		cfg.Prefab = defaultEnemyPrefab
	}
	enemySpec := cfg.Spec
	if enemySpec == nil {
		spec, err := prefabs.LoadEnemyPrefab(cfg.Prefab)
		if err != nil {
			return ecs.Entity{}, fmt.Errorf("enemy: load spec: %w", err)
		}
		enemySpec = spec
	}

	if !w.IsAlive(cfg.Player) {
		return ecs.Entity{}, fmt.Errorf("enemy: player %s not alive: %w", cfg.Player, ErrMissingPlayer)
	}
	if !ecs.Has(w, cfg.Player, component.TransformComponent.Kind()) {
		return ecs.Entity{}, fmt.Errorf("enemy: player %s has no transform: %w", cfg.Player, ErrMissingPlayer)
	}

	tunables := enemySpec.AI.WithDefaults()
	if err := validateAISpec(tunables); err != nil {
		return ecs.Entity{}, fmt.Errorf("enemy: %w", err)
	}
	if enemySpec.Health <= 0 {
		return ecs.Entity{}, fmt.Errorf("enemy: health %v: %w", enemySpec.Health, ErrInvalidTunable)
	}

	aiCfg := aiConfigFromSpec(enemySpec)
	aiCfg.Prefab = cfg.Prefab
	if err := validateBehavior(cfg.Validator, cfg.Prefab, aiCfg); err != nil {
		return ecs.Entity{}, err
	}

	audioComp, err := buildAudioComponent(cfg.Sounds, enemySpec.Audio)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("enemy: build audio component: %w", err)
	}

	entity := ecs.CreateEntity(w)
	if err := addEnemyComponents(w, entity, cfg, enemySpec, tunables, aiCfg, audioComp); err != nil {
		ecs.DestroyEntity(w, entity)
		return ecs.Entity{}, err
	}
	return entity, nil
}

func addEnemyComponents(w *ecs.World, entity ecs.Entity, cfg EnemyConfig, enemySpec *prefabs.EnemySpec, tunables prefabs.AISpec, aiCfg *component.AIConfig, audioComp *component.Audio) error {
	if err := ecs.Add(w, entity, component.EnemyTagComponent.Kind(), &component.EnemyTag{}); err != nil {
		return fmt.Errorf("enemy: add enemy tag: %w", err)
	}

	ai := aiFromSpec(tunables)
	if err := ecs.Add(w, entity, component.AIComponent.Kind(), &ai); err != nil {
		return fmt.Errorf("enemy: add ai: %w", err)
	}

	if err := ecs.Add(w, entity, component.AITargetComponent.Kind(), &component.AITarget{ID: cfg.Player.ID, Gen: cfg.Player.Gen}); err != nil {
		return fmt.Errorf("enemy: add ai target: %w", err)
	}

	if err := ecs.Add(w, entity, component.AIStateComponent.Kind(), &component.AIState{}); err != nil {
		return fmt.Errorf("enemy: add ai state: %w", err)
	}

	if err := ecs.Add(w, entity, component.AIContextComponent.Kind(), &component.AIContext{
		LastSeenX: cfg.X,
		LastSeenY: cfg.Y,
		Idle:      true,
		CanAttack: true,
	}); err != nil {
		return fmt.Errorf("enemy: add ai context: %w", err)
	}

	if err := ecs.Add(w, entity, component.AIConfigComponent.Kind(), aiCfg); err != nil {
		return fmt.Errorf("enemy: add ai config: %w", err)
	}

	if err := ecs.Add(w, entity, component.TransformComponent.Kind(), &component.Transform{X: cfg.X, Y: cfg.Y, ScaleX: 1, ScaleY: 1}); err != nil {
		return fmt.Errorf("enemy: add transform: %w", err)
	}

	if err := ecs.Add(w, entity, component.MoverComponent.Kind(), &component.Mover{Accel: enemySpec.Mover.Accel}); err != nil {
		return fmt.Errorf("enemy: add mover: %w", err)
	}

	if err := ecs.Add(w, entity, component.PhysicsBodyComponent.Kind(), physicsBodyFromSpec(enemySpec.Collider, false)); err != nil {
		return fmt.Errorf("enemy: add physics body: %w", err)
	}

	if err := ecs.Add(w, entity, component.HealthComponent.Kind(), &component.Health{Current: enemySpec.Health, IsEnemy: true}); err != nil {
		return fmt.Errorf("enemy: add health: %w", err)
	}

	if err := ecs.Add(w, entity, component.AnimatorComponent.Kind(), &component.Animator{Idle: true}); err != nil {
		return fmt.Errorf("enemy: add animator: %w", err)
	}

	if err := ecs.Add(w, entity, component.KnockbackableComponent.Kind(), &component.Knockbackable{}); err != nil {
		return fmt.Errorf("enemy: add knockbackable: %w", err)
	}

	if err := ecs.Add(w, entity, component.ShapeComponent.Kind(), &component.Shape{
		Color:      enemySpec.Shape.Color.Or(color.NRGBA{R: 0xc0, G: 0x39, B: 0x2b, A: 0xff}),
		IdleColor:  enemySpec.Shape.IdleColor.Or(nil),
		ShowFacing: enemySpec.Shape.ShowFacing,
	}); err != nil {
		return fmt.Errorf("enemy: add shape: %w", err)
	}

	if err := ecs.Add(w, entity, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: enemySpec.RenderLayer.Index}); err != nil {
		return fmt.Errorf("enemy: add render layer: %w", err)
	}

	if audioComp != nil {
		if err := ecs.Add(w, entity, component.AudioComponent.Kind(), audioComp); err != nil {
			return fmt.Errorf("enemy: add audio: %w", err)
		}
	}

	return nil
}

// ApplyEnemySpec updates a live enemy from an edited prefab: the AI
// tunables and the behavior config are replaced, runtime state is kept.
// Nothing changes when spec fails validation.
func ApplyEnemySpec(w *ecs.World, e ecs.Entity, spec *prefabs.EnemySpec, v AIValidator) error {
	if spec == nil {
		return fmt.Errorf("enemy: nil spec: %w", ErrInvalidTunable)
	}
	tunables := spec.AI.WithDefaults()
	if err := validateAISpec(tunables); err != nil {
		return fmt.Errorf("enemy: %w", err)
	}
	ai, ok := ecs.Get(w, e, component.AIComponent.Kind())
	if !ok {
		return fmt.Errorf("enemy: entity %s has no ai: %w", e, component.ErrEntityNotAlive)
	}
	cfg, ok := ecs.Get(w, e, component.AIConfigComponent.Kind())
	if !ok {
		return fmt.Errorf("enemy: entity %s has no ai config: %w", e, component.ErrEntityNotAlive)
	}

	next := aiConfigFromSpec(spec)
	next.Prefab = cfg.Prefab
	if err := validateBehavior(v, cfg.Prefab, next); err != nil {
		return err
	}

	*ai = aiFromSpec(tunables)
	*cfg = *next
	return nil
}

func validateBehavior(v AIValidator, prefab string, cfg *component.AIConfig) error {
	if v == nil {
		return nil
	}
	if err := v.ValidateAIConfig(cfg); err != nil {
		return fmt.Errorf("enemy %s: %w: %w", prefab, ErrInvalidBehavior, err)
	}
	return nil
}

func validateAISpec(s prefabs.AISpec) error {
	checks := []struct {
		name  string
		value float64
	}{
		{"chase_speed", s.ChaseSpeed},
		{"idle_speed", s.IdleSpeed},
		{"turn_speed", s.TurnSpeed},
		{"damage", s.Damage},
		{"seek_interval", s.SeekInterval},
		{"seek_interval_chasing", s.SeekIntervalChasing},
		{"attack_cooldown", s.AttackCooldown},
		{"shot_knockback", s.ShotKnockback},
		{"wander_distance", s.WanderDistance},
		{"arrive_distance", s.ArriveDistance},
		{"wander_arrive_distance", s.WanderArriveDistance},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("%s = %v: %w", c.name, c.value, ErrInvalidTunable)
		}
	}
	return nil
}

func aiFromSpec(s prefabs.AISpec) component.AI {
	return component.AI{
		ChaseSpeed:           s.ChaseSpeed,
		IdleSpeed:            s.IdleSpeed,
		TurnSpeed:            s.TurnSpeed,
		Damage:               s.Damage,
		SeekInterval:         s.SeekInterval,
		SeekIntervalChasing:  s.SeekIntervalChasing,
		AttackCooldown:       s.AttackCooldown,
		ShotKnockback:        s.ShotKnockback,
		WanderDistance:       s.WanderDistance,
		ArriveDistance:       s.ArriveDistance,
		WanderArriveDistance: s.WanderArriveDistance,
	}
}

func aiConfigFromSpec(spec *prefabs.EnemySpec) *component.AIConfig {
	if spec.Script != "" {
		return &component.AIConfig{Script: spec.Script}
	}
	if spec.FSMFile != "" {
		return &component.AIConfig{FSM: spec.FSMFile}
	}
	if spec.FSM.Empty() {
		return &component.AIConfig{FSM: component.DefaultAIFSMName}
	}

	fsm := &component.AIFSMSpec{
		Initial:     spec.FSM.Initial,
		States:      make(map[string]component.AIFSMStateSpec, len(spec.FSM.States)),
		Transitions: spec.FSM.Transitions,
	}
	for name, s := range spec.FSM.States {
		fsm.States[name] = component.AIFSMStateSpec{
			OnEnter: s.OnEnter,
			While:   s.While,
			OnExit:  s.OnExit,
		}
	}
	return &component.AIConfig{Spec: fsm}
}

func physicsBodyFromSpec(c prefabs.ColliderSpec, static bool) *component.PhysicsBody {
	return &component.PhysicsBody{
		Width:      c.Width,
		Height:     c.Height,
		Radius:     c.Radius,
		Mass:       c.Mass,
		Friction:   c.Friction,
		Elasticity: c.Elasticity,
		Static:     static,
		Sensor:     c.Sensor,
	}
}
