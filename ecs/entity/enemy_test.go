package entity

import (
	"errors"
	"testing"

	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/levels"
	"github.com/milk9111/stalker/prefabs"
	"github.com/stretchr/testify/require"
)

type nopPlayer struct{}

func (nopPlayer) Play()             {}
func (nopPlayer) Rewind() error     { return nil }
func (nopPlayer) SetVolume(float64) {}

type nopSounds struct{ err error }

func (s nopSounds) LoadSound(prefabs.AudioSpec) (component.SoundPlayer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nopPlayer{}, nil
}

// recordingValidator fails with err and keeps every config it was asked
// about.
type recordingValidator struct {
	err  error
	seen []component.AIConfig
}

func (v *recordingValidator) ValidateAIConfig(cfg *component.AIConfig) error {
	v.seen = append(v.seen, *cfg)
	return v.err
}

func newPlayer(t *testing.T, w *ecs.World) ecs.Entity {
	t.Helper()
	p := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, p, component.TransformComponent.Kind(), &component.Transform{X: 4, Y: 4}))
	return p
}

func TestNewEnemyFromPrefab(t *testing.T) {
	w := ecs.NewWorld()
	player := newPlayer(t, w)

	e, err := NewEnemy(w, EnemyConfig{X: 1, Y: 2, Player: player, Sounds: nopSounds{}})
	require.NoError(t, err)

	ai, ok := ecs.Get(w, e, component.AIComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 6.0, ai.ChaseSpeed)
	require.Equal(t, 1.0, ai.AttackCooldown)

	ctx, ok := ecs.Get(w, e, component.AIContextComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 1.0, ctx.LastSeenX)
	require.Equal(t, 2.0, ctx.LastSeenY)
	require.True(t, ctx.Idle)
	require.True(t, ctx.CanAttack)
	require.False(t, ctx.CanSeePlayer)

	target, ok := ecs.Get(w, e, component.AITargetComponent.Kind())
	require.True(t, ok)
	require.Equal(t, player.ID, target.ID)
	require.Equal(t, player.Gen, target.Gen)

	cfg, ok := ecs.Get(w, e, component.AIConfigComponent.Kind())
	require.True(t, ok)
	require.NotNil(t, cfg.Spec, "enemy.yaml carries an fsm")
	require.Equal(t, "guard", cfg.Spec.Initial)
	require.Equal(t, "enemy.yaml", cfg.Prefab)

	health, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 5.0, health.Current)
	require.True(t, health.IsEnemy)

	audio, ok := ecs.Get(w, e, component.AudioComponent.Kind())
	require.True(t, ok)
	require.Contains(t, audio.Names, "start_chasing")

	for _, has := range []bool{
		ecs.Has(w, e, component.EnemyTagComponent.Kind()),
		ecs.Has(w, e, component.MoverComponent.Kind()),
		ecs.Has(w, e, component.KnockbackableComponent.Kind()),
		ecs.Has(w, e, component.PhysicsBodyComponent.Kind()),
		ecs.Has(w, e, component.AnimatorComponent.Kind()),
	} {
		require.True(t, has)
	}
}

func TestNewEnemyDefaultFSMWithoutSpecFSM(t *testing.T) {
	w := ecs.NewWorld()
	player := newPlayer(t, w)

	e, err := NewEnemy(w, EnemyConfig{Player: player, Spec: &prefabs.EnemySpec{Health: 1}})
	require.NoError(t, err)

	cfg, ok := ecs.Get(w, e, component.AIConfigComponent.Kind())
	require.True(t, ok)
	require.Equal(t, component.DefaultAIFSMName, cfg.FSM)
	require.False(t, ecs.Has(w, e, component.AudioComponent.Kind()), "no loader, no audio")

	ai, ok := ecs.Get(w, e, component.AIComponent.Kind())
	require.True(t, ok)
	require.Equal(t, prefabs.DefaultAISpec().SeekInterval, ai.SeekInterval)
}

func TestNewEnemyValidation(t *testing.T) {
	negative := func(mut func(*prefabs.AISpec)) *prefabs.EnemySpec {
		s := &prefabs.EnemySpec{Health: 5, AI: prefabs.DefaultAISpec()}
		mut(&s.AI)
		return s
	}

	cases := []struct {
		name    string
		spec    *prefabs.EnemySpec
		player  func(t *testing.T, w *ecs.World) ecs.Entity
		sounds  SoundLoader
		wantErr error
	}{
		{
			name: "dead player",
			spec: &prefabs.EnemySpec{Health: 5},
			player: func(t *testing.T, w *ecs.World) ecs.Entity {
				p := newPlayer(t, w)
				ecs.DestroyEntity(w, p)
				return p
			},
			wantErr: ErrMissingPlayer,
		},
		{
			name: "player without transform",
			spec: &prefabs.EnemySpec{Health: 5},
			player: func(t *testing.T, w *ecs.World) ecs.Entity {
				return ecs.CreateEntity(w)
			},
			wantErr: ErrMissingPlayer,
		},
		{
			name:    "zero health",
			spec:    &prefabs.EnemySpec{Health: 0},
			player:  newPlayer,
			wantErr: ErrInvalidTunable,
		},
		{
			name:    "negative chase speed",
			spec:    negative(func(a *prefabs.AISpec) { a.ChaseSpeed = -1 }),
			player:  newPlayer,
			wantErr: ErrInvalidTunable,
		},
		{
			name:    "negative cooldown",
			spec:    negative(func(a *prefabs.AISpec) { a.AttackCooldown = -0.5 }),
			player:  newPlayer,
			wantErr: ErrInvalidTunable,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			player := c.player(t, w)
			before := len(ecs.Entities(w))

			_, err := NewEnemy(w, EnemyConfig{Player: player, Spec: c.spec, Sounds: c.sounds})
			require.ErrorIs(t, err, c.wantErr)
			require.Len(t, ecs.Entities(w), before, "nothing is created on failure")
		})
	}
}

func TestNewEnemyAudioFailure(t *testing.T) {
	w := ecs.NewWorld()
	player := newPlayer(t, w)
	boom := errors.New("boom")
	spec := &prefabs.EnemySpec{Health: 5, Audio: []prefabs.AudioSpec{{Name: "hit"}}}

	_, err := NewEnemy(w, EnemyConfig{Player: player, Spec: spec, Sounds: nopSounds{err: boom}})
	require.ErrorIs(t, err, boom)
	require.Len(t, ecs.Entities(w), 1)
}

func TestNewEnemyRejectsInvalidBehavior(t *testing.T) {
	w := ecs.NewWorld()
	player := newPlayer(t, w)
	boom := errors.New("unknown action \"fly_away\"")
	v := &recordingValidator{err: boom}
	spec := &prefabs.EnemySpec{Health: 5, Script: "scripts/missing.tengo"}

	_, err := NewEnemy(w, EnemyConfig{Player: player, Spec: spec, Validator: v})
	require.ErrorIs(t, err, ErrInvalidBehavior)
	require.ErrorIs(t, err, boom)
	require.Len(t, ecs.Entities(w), 1, "only the player exists")
	require.Len(t, v.seen, 1)
	require.Equal(t, "scripts/missing.tengo", v.seen[0].Script)
}

func TestNewEnemyFromFSMFile(t *testing.T) {
	w := ecs.NewWorld()
	player := newPlayer(t, w)
	v := &recordingValidator{}

	e, err := NewEnemy(w, EnemyConfig{Player: player, Prefab: "sentry.yaml", Validator: v})
	require.NoError(t, err)

	cfg, ok := ecs.Get(w, e, component.AIConfigComponent.Kind())
	require.True(t, ok)
	require.Equal(t, "sentry_fsm.yaml", cfg.FSM)
	require.Nil(t, cfg.Spec)
	require.Equal(t, "sentry.yaml", cfg.Prefab)
	require.Len(t, v.seen, 1)

	health, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 3.0, health.Current)
}

func TestApplyEnemySpec(t *testing.T) {
	w := ecs.NewWorld()
	player := newPlayer(t, w)
	e, err := NewEnemy(w, EnemyConfig{Player: player, Spec: &prefabs.EnemySpec{Health: 5}})
	require.NoError(t, err)

	spec := &prefabs.EnemySpec{AI: prefabs.AISpec{ChaseSpeed: 9}}
	require.NoError(t, ApplyEnemySpec(w, e, spec, nil))
	ai, ok := ecs.Get(w, e, component.AIComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 9.0, ai.ChaseSpeed)
	require.Equal(t, prefabs.DefaultAISpec().IdleSpeed, ai.IdleSpeed)

	spec.AI.TurnSpeed = -1
	require.ErrorIs(t, ApplyEnemySpec(w, e, spec, nil), ErrInvalidTunable)
	require.Equal(t, 9.0, ai.ChaseSpeed)
}

func TestApplyEnemySpecReplacesBehavior(t *testing.T) {
	w := ecs.NewWorld()
	player := newPlayer(t, w)
	e, err := NewEnemy(w, EnemyConfig{Player: player})
	require.NoError(t, err)
	cfg, ok := ecs.Get(w, e, component.AIConfigComponent.Kind())
	require.True(t, ok)
	require.NotNil(t, cfg.Spec)

	edited := &prefabs.EnemySpec{Health: 5, FSMFile: "sentry_fsm.yaml"}
	require.NoError(t, ApplyEnemySpec(w, e, edited, &recordingValidator{}))
	require.Equal(t, "sentry_fsm.yaml", cfg.FSM)
	require.Nil(t, cfg.Spec)
	require.Equal(t, "enemy.yaml", cfg.Prefab, "the prefab name survives")

	broken := &prefabs.EnemySpec{Health: 5, Script: "scripts/missing.tengo"}
	err = ApplyEnemySpec(w, e, broken, &recordingValidator{err: errors.New("no such script")})
	require.ErrorIs(t, err, ErrInvalidBehavior)
	require.Equal(t, "sentry_fsm.yaml", cfg.FSM, "a rejected edit changes nothing")
	require.Empty(t, cfg.Script)
}

func TestLoadLevelToWorld(t *testing.T) {
	w := ecs.NewWorld()
	lvl, err := levels.LoadLevelFromFS("corridor")
	require.NoError(t, err)

	player, err := LoadLevelToWorld(w, lvl, nil, nil)
	require.NoError(t, err)
	require.True(t, ecs.Has(w, player, component.PlayerTagComponent.Kind()))

	tr, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 2.5, tr.X)
	require.Equal(t, 2.5, tr.Y)

	require.Len(t, w.Query(component.EnemyTagComponent.Kind()), 1)
	require.NotEmpty(t, w.Query(component.WallTagComponent.Kind()))

	bounds, ok := w.First(component.LevelBoundsComponent.Kind())
	require.True(t, ok)
	b, ok := ecs.Get(w, bounds, component.LevelBoundsComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 12.0, b.Width)
}

func TestLoadLevelToWorldUsesSpawnPrefab(t *testing.T) {
	w := ecs.NewWorld()
	lvl := &levels.Level{
		Width:  4,
		Height: 2,
		Layers: [][]int{{0, 0, 0, 0, 0, 0, 0, 0}},
		Entities: []levels.Entity{
			{Type: "player", X: 0, Y: 0},
			{Type: "enemy", X: 3, Y: 1, Props: map[string]interface{}{"prefab": "sentry.yaml"}},
			{Type: "enemy", X: 2, Y: 0},
		},
	}
	v := &recordingValidator{}

	_, err := LoadLevelToWorld(w, lvl, nil, v)
	require.NoError(t, err)
	require.Len(t, v.seen, 2)
	require.Equal(t, "sentry.yaml", v.seen[0].Prefab)
	require.Equal(t, "sentry_fsm.yaml", v.seen[0].FSM)
	require.Equal(t, "enemy.yaml", v.seen[1].Prefab)

	v.err = errors.New("bad fsm")
	_, err = LoadLevelToWorld(ecs.NewWorld(), lvl, nil, v)
	require.ErrorIs(t, err, ErrInvalidBehavior)
}

func TestLoadLevelRequiresOnePlayer(t *testing.T) {
	w := ecs.NewWorld()
	lvl := &levels.Level{Width: 2, Height: 2, Layers: [][]int{{0, 0, 0, 0}}}
	_, err := LoadLevelToWorld(w, lvl, nil, nil)
	require.ErrorIs(t, err, ErrMissingPlayer)
}

func TestNewWallAndShot(t *testing.T) {
	w := ecs.NewWorld()
	wall, err := NewWall(w, levels.Rect{X: 1, Y: 2, W: 3, H: 1})
	require.NoError(t, err)
	tr, ok := ecs.Get(w, wall, component.TransformComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 2.5, tr.X)
	require.Equal(t, 2.5, tr.Y)

	_, err = NewWall(w, levels.Rect{W: 0, H: 1})
	require.ErrorIs(t, err, ErrInvalidTunable)

	shotSpec, err := prefabs.LoadShotSpec("")
	require.NoError(t, err)
	shot, err := NewShot(w, 0, 0, 20, 0, shotSpec)
	require.NoError(t, err)
	body, ok := ecs.Get(w, shot, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	require.True(t, body.Sensor)
	require.Equal(t, 20.0, body.InitialVX)
	ttl, ok := ecs.Get(w, shot, component.TTLComponent.Kind())
	require.True(t, ok)
	require.Equal(t, shotSpec.TTL, ttl.ExpiresAt)
	require.False(t, ecs.Has(w, shot, component.CollisionLayerComponent.Kind()))

	enemyShot := *shotSpec
	enemyShot.EnemyShot = true
	shot, err = NewShot(w, 0, 0, 20, 0, &enemyShot)
	require.NoError(t, err)
	layer, ok := ecs.Get(w, shot, component.CollisionLayerComponent.Kind())
	require.True(t, ok)
	require.Equal(t, component.LayerWall, layer.Mask)
}
