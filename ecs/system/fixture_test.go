package system

import (
	"testing"

	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/ecs/entity"
	"github.com/milk9111/stalker/levels"
	"github.com/milk9111/stalker/prefabs"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	plays  int
	volume float64
}

func (p *fakePlayer) Play()                    { p.plays++ }
func (p *fakePlayer) Rewind() error            { return nil }
func (p *fakePlayer) SetVolume(volume float64) { p.volume = volume }

// fakeSounds hands out one fakePlayer per clip name.
type fakeSounds struct {
	players map[string]*fakePlayer
}

func newFakeSounds() *fakeSounds {
	return &fakeSounds{players: map[string]*fakePlayer{}}
}

func (s *fakeSounds) LoadSound(spec prefabs.AudioSpec) (component.SoundPlayer, error) {
	p := &fakePlayer{}
	s.players[spec.Name] = p
	return p, nil
}

func (s *fakeSounds) plays(name string) int {
	if p, ok := s.players[name]; ok {
		return p.plays
	}
	return 0
}

// newTestWorld registers the gameplay systems in frame order, minus the
// ones that need a window or a physics space.
func newTestWorld() *ecs.World {
	w := ecs.NewWorld()
	w.AddSystem(NewContactSystem())
	w.AddSystem(NewCooldownSystem())
	w.AddSystem(NewPerceptionSystem(WallTracer{}))
	w.AddSystem(NewAISystem())
	w.AddSystem(NewMovementSystem())
	w.AddSystem(NewDamageKnockbackSystem())
	w.AddSystem(NewHealthSystem())
	w.AddSystem(NewTTLSystem())
	w.AddSystem(NewAudioSystem())
	return w
}

func testEnemySpec() *prefabs.EnemySpec {
	return &prefabs.EnemySpec{
		Name:   "stalker",
		Health: 5,
		AI:     prefabs.DefaultAISpec(),
		Audio: []prefabs.AudioSpec{
			{Name: "hit"},
			{Name: "death"},
			{Name: "start_chasing"},
			{Name: "attack"},
		},
	}
}

func addTestPlayer(t *testing.T, w *ecs.World, x, y float64) ecs.Entity {
	t.Helper()
	p := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, p, component.PlayerTagComponent.Kind(), &component.PlayerTag{}))
	require.NoError(t, ecs.Add(w, p, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}))
	require.NoError(t, ecs.Add(w, p, component.HealthComponent.Kind(), &component.Health{Current: 10}))
	return p
}

func addTestEnemy(t *testing.T, w *ecs.World, x, y float64, player ecs.Entity, spec *prefabs.EnemySpec, sounds entity.SoundLoader) ecs.Entity {
	t.Helper()
	if spec == nil {
		spec = testEnemySpec()
	}
	e, err := entity.NewEnemy(w, entity.EnemyConfig{X: x, Y: y, Player: player, Spec: spec, Sounds: sounds, Validator: NewAISystem()})
	require.NoError(t, err)
	return e
}

func addTestWall(t *testing.T, w *ecs.World, r levels.Rect) ecs.Entity {
	t.Helper()
	e, err := entity.NewWall(w, r)
	require.NoError(t, err)
	return e
}

func stepWorld(w *ecs.World, frames int) {
	for i := 0; i < frames; i++ {
		w.Update()
	}
}

func aiState(t *testing.T, w *ecs.World, e ecs.Entity) component.StateID {
	t.Helper()
	s, ok := ecs.Get(w, e, component.AIStateComponent.Kind())
	require.True(t, ok)
	return s.Current
}

func aiContext(t *testing.T, w *ecs.World, e ecs.Entity) *component.AIContext {
	t.Helper()
	c, ok := ecs.Get(w, e, component.AIContextComponent.Kind())
	require.True(t, ok)
	return c
}

func transformOf(t *testing.T, w *ecs.World, e ecs.Entity) *component.Transform {
	t.Helper()
	tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	require.True(t, ok)
	return tr
}
