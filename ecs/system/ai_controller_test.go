package system

import (
	"math"
	"testing"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/ecs/entity"
	"github.com/milk9111/stalker/levels"
	"github.com/milk9111/stalker/prefabs"
	"github.com/stretchr/testify/require"
)

func TestGuardChasesVisiblePlayer(t *testing.T) {
	w := newTestWorld()
	sounds := newFakeSounds()
	player := addTestPlayer(t, w, 4, 3)
	enemy := addTestEnemy(t, w, 0, 0, player, nil, sounds)

	anim, ok := ecs.Get(w, enemy, component.AnimatorComponent.Kind())
	require.True(t, ok)
	require.True(t, anim.Idle)

	stepWorld(w, 1)
	require.Equal(t, component.StateChase, aiState(t, w, enemy))
	require.False(t, aiContext(t, w, enemy).Idle)
	require.False(t, anim.Idle)
	require.Equal(t, 1, sounds.plays("start_chasing"))

	stepWorld(w, 1)
	mover, ok := ecs.Get(w, enemy, component.MoverComponent.Kind())
	require.True(t, ok)
	require.True(t, mover.Active)
	require.InDelta(t, 0.8, mover.DirX, 1e-9)
	require.InDelta(t, 0.6, mover.DirY, 1e-9)

	tr := transformOf(t, w, enemy)
	require.InDelta(t, 6.0/60*0.8, tr.X, 1e-9)
	require.InDelta(t, 6.0/60*0.6, tr.Y, 1e-9)
	require.Greater(t, tr.Rotation, 0.0, "facing turns towards the movement")
}

func TestChaseEndsAtLastSeenPosition(t *testing.T) {
	w := newTestWorld()
	player := addTestPlayer(t, w, 3, 0)
	enemy := addTestEnemy(t, w, 0, 0, player, nil, nil)

	stepWorld(w, 1)
	require.Equal(t, component.StateChase, aiState(t, w, enemy))

	// hide the player behind a wall before the next check
	transformOf(t, w, player).Y = 10
	addTestWall(t, w, levels.Rect{X: -5, Y: 4, W: 20, H: 1})

	frames := 0
	for aiState(t, w, enemy) == component.StateChase && frames < 120 {
		stepWorld(w, 1)
		frames++
	}
	require.Equal(t, component.StateIdle, aiState(t, w, enemy))

	ctx := aiContext(t, w, enemy)
	require.False(t, ctx.CanSeePlayer)
	require.True(t, ctx.Idle)
	require.Equal(t, 3.0, ctx.LastSeenX)
	require.Equal(t, 0.0, ctx.LastSeenY)

	// escape triggers within ArriveDistance, then one idle step is taken
	tr := transformOf(t, w, enemy)
	require.LessOrEqual(t, common.Distance(tr.X, tr.Y, 3, 0), 0.1+3.0/60+1e-9)

	// wandering continues along the chase direction
	require.True(t, ctx.Wandering)
	require.InDelta(t, 1.0, math.Hypot(ctx.WanderDirX, ctx.WanderDirY), 1e-9)
	require.InDelta(t, 2.0-3.0/60, common.Distance(tr.X, tr.Y, ctx.WanderTargetX, ctx.WanderTargetY), 1e-6)
}

func TestIdleReturnsToChase(t *testing.T) {
	w := newTestWorld()
	player := addTestPlayer(t, w, 3, 0)
	enemy := addTestEnemy(t, w, 0, 0, player, nil, nil)

	state, ok := ecs.Get(w, enemy, component.AIStateComponent.Kind())
	require.True(t, ok)
	state.Current = component.StateIdle
	beginWander(aiContext(t, w, enemy), 0, 0, 1, 0, 2)

	stepWorld(w, 1)
	require.Equal(t, component.StateChase, aiState(t, w, enemy))
	require.False(t, aiContext(t, w, enemy).Wandering, "leaving idle stops the wander")
}

func TestWanderReversesOnWallContact(t *testing.T) {
	w := newTestWorld()
	player := addTestPlayer(t, w, 3, 0)
	enemy := addTestEnemy(t, w, 0, 0, player, nil, nil)
	wall := addTestWall(t, w, levels.Rect{X: 0.5, Y: -1, W: 1, H: 2})
	ecs.DestroyEntity(w, player)

	state, ok := ecs.Get(w, enemy, component.AIStateComponent.Kind())
	require.True(t, ok)
	state.Current = component.StateIdle
	ctx := aiContext(t, w, enemy)
	beginWander(ctx, 0, 0, 1, 0, 2)
	mover, ok := ecs.Get(w, enemy, component.MoverComponent.Kind())
	require.True(t, ok)
	moveTowards(mover, 0, 0, 2, 0, 3)

	w.Events().PushCollision(ecs.CollisionEvent{Entity: enemy, Other: wall, Kind: ecs.CollisionEnter})
	stepWorld(w, 1)

	require.True(t, ctx.HitWall)
	require.Equal(t, -1.0, ctx.WanderDirX)
	require.InDelta(t, -2.0, ctx.WanderTargetX, 1e-9)
	require.Less(t, mover.DirX, 0.0)
	require.Less(t, transformOf(t, w, enemy).X, 0.0)
}

func TestWanderTurnsOncePerWallContact(t *testing.T) {
	w := newTestWorld()
	player := addTestPlayer(t, w, 3, 0)
	enemy := addTestEnemy(t, w, 0, 0, player, nil, nil)
	wall := addTestWall(t, w, levels.Rect{X: 0.5, Y: -1, W: 1, H: 2})
	ecs.DestroyEntity(w, player)

	state, ok := ecs.Get(w, enemy, component.AIStateComponent.Kind())
	require.True(t, ok)
	state.Current = component.StateIdle
	ctx := aiContext(t, w, enemy)
	beginWander(ctx, 0, 0, 1, 0, 2)

	w.Events().PushCollision(ecs.CollisionEvent{Entity: enemy, Other: wall, Kind: ecs.CollisionEnter})
	stepWorld(w, 1)
	require.Equal(t, -1.0, ctx.WanderDirX)

	// the contact persists for several frames without another turn
	for i := 0; i < 5; i++ {
		stepWorld(w, 1)
		require.True(t, ctx.HitWall)
		require.Equal(t, -1.0, ctx.WanderDirX, "frame %d", i)
	}
	require.InDelta(t, -2.0, ctx.WanderTargetX, 1e-9)

	w.Events().PushCollision(ecs.CollisionEvent{Entity: enemy, Other: wall, Kind: ecs.CollisionExit})
	stepWorld(w, 1)
	require.False(t, ctx.WallReversed)
	require.Equal(t, -1.0, ctx.WanderDirX)

	w.Events().PushCollision(ecs.CollisionEvent{Entity: enemy, Other: wall, Kind: ecs.CollisionEnter})
	stepWorld(w, 1)
	require.Equal(t, 1.0, ctx.WanderDirX, "a new contact turns again")
}

func TestWanderReversesOnArrival(t *testing.T) {
	w := newTestWorld()
	player := addTestPlayer(t, w, 3, 0)
	enemy := addTestEnemy(t, w, 0, 0, player, nil, nil)
	ecs.DestroyEntity(w, player)

	state, ok := ecs.Get(w, enemy, component.AIStateComponent.Kind())
	require.True(t, ok)
	state.Current = component.StateIdle
	ctx := aiContext(t, w, enemy)
	beginWander(ctx, 0, 0, 0, 1, 2)
	mover, ok := ecs.Get(w, enemy, component.MoverComponent.Kind())
	require.True(t, ok)
	moveTowards(mover, 0, 0, 0, 2, 3)

	// 2 units at 3 u/s is 40 frames
	stepWorld(w, 45)
	require.Equal(t, -1.0, ctx.WanderDirY)
	require.Less(t, mover.DirY, 0.0)
	require.Less(t, transformOf(t, w, enemy).Y, 2.0)
}

func TestFaceMovementTurnsGradually(t *testing.T) {
	ai := &component.AI{TurnSpeed: 6}
	tr := &component.Transform{Rotation: 0}
	mover := &component.Mover{DirX: -1, DirY: 0}
	ctx := &AIActionContext{AI: ai, Transform: tr, Mover: mover, Dt: 1.0 / 60}

	actionRegistry["face_movement"](nil)(ctx)
	require.InDelta(t, math.Pi*0.1, math.Abs(tr.Rotation), 1e-9)

	for i := 0; i < 300; i++ {
		actionRegistry["face_movement"](nil)(ctx)
	}
	require.InDelta(t, math.Pi, math.Abs(tr.Rotation), 1e-6)
}

func TestScriptedEnemyChases(t *testing.T) {
	w := newTestWorld()
	spec := testEnemySpec()
	spec.Script = "scripts/stalker.tengo"
	player := addTestPlayer(t, w, 3, 0)
	enemy := addTestEnemy(t, w, 0, 0, player, spec, nil)

	cfg, ok := ecs.Get(w, enemy, component.AIConfigComponent.Kind())
	require.True(t, ok)
	require.Equal(t, "scripts/stalker.tengo", cfg.Script)

	stepWorld(w, 1)
	require.Equal(t, component.StateChase, aiState(t, w, enemy))
	require.False(t, aiContext(t, w, enemy).Idle)

	stepWorld(w, 1)
	require.Greater(t, transformOf(t, w, enemy).X, 0.0)
}

func TestReloadKeepsRunningState(t *testing.T) {
	w := ecs.NewWorld()
	ai := NewAISystem()
	w.AddSystem(NewPerceptionSystem(WallTracer{}))
	w.AddSystem(ai)
	player := addTestPlayer(t, w, 3, 0)
	enemy := addTestEnemy(t, w, 0, 0, player, nil, nil)

	stepWorld(w, 1)
	require.Equal(t, component.StateChase, aiState(t, w, enemy))

	ai.Reload()
	stepWorld(w, 1)
	require.Equal(t, component.StateChase, aiState(t, w, enemy))
}

func TestScriptReloadDoesNotReplayEnter(t *testing.T) {
	w := ecs.NewWorld()
	ai := NewAISystem()
	w.AddSystem(NewPerceptionSystem(WallTracer{}))
	w.AddSystem(ai)
	w.AddSystem(NewAudioSystem())
	sounds := newFakeSounds()
	spec := testEnemySpec()
	spec.Script = "scripts/stalker.tengo"
	player := addTestPlayer(t, w, 3, 0)
	enemy := addTestEnemy(t, w, 0, 0, player, spec, sounds)

	stepWorld(w, 1)
	require.Equal(t, component.StateChase, aiState(t, w, enemy))
	require.Equal(t, 1, sounds.plays("start_chasing"))

	ai.Reload()
	stepWorld(w, 3)
	require.Equal(t, component.StateChase, aiState(t, w, enemy))
	require.Equal(t, 1, sounds.plays("start_chasing"), "chase is not re-entered")
}

func flyAwaySpec() *prefabs.EnemySpec {
	spec := testEnemySpec()
	spec.FSM = prefabs.FSMSpec{
		Initial: "guard",
		States: map[string]prefabs.FSMStateSpec{
			"guard": {OnEnter: []map[string]any{{"fly_away": nil}}},
		},
	}
	return spec
}

func TestNewEnemyRejectsBrokenBehavior(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*prefabs.EnemySpec)
		want string
	}{
		{
			name: "unknown action",
			mut:  func(s *prefabs.EnemySpec) { s.FSM = flyAwaySpec().FSM },
			want: "fly_away",
		},
		{
			name: "bad initial state",
			mut: func(s *prefabs.EnemySpec) {
				s.FSM = prefabs.FSMSpec{Initial: "nowhere", States: map[string]prefabs.FSMStateSpec{"guard": {}}}
			},
			want: "nowhere",
		},
		{
			name: "missing script",
			mut:  func(s *prefabs.EnemySpec) { s.Script = "scripts/missing.tengo" },
			want: "missing.tengo",
		},
		{
			name: "unknown fsm name",
			mut:  func(s *prefabs.EnemySpec) { s.FSMFile = "stalker_v2" },
			want: "stalker_v2",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newTestWorld()
			player := addTestPlayer(t, w, 3, 0)
			spec := testEnemySpec()
			c.mut(spec)

			_, err := entity.NewEnemy(w, entity.EnemyConfig{Player: player, Spec: spec, Validator: NewAISystem()})
			require.ErrorIs(t, err, entity.ErrInvalidBehavior)
			require.Contains(t, err.Error(), c.want)
			require.Len(t, w.Query(component.EnemyTagComponent.Kind()), 0)
		})
	}
}

func TestUnknownFSMNameIsAnError(t *testing.T) {
	ai := NewAISystem()
	require.NoError(t, ai.ValidateAIConfig(&component.AIConfig{}))
	require.NoError(t, ai.ValidateAIConfig(&component.AIConfig{FSM: component.DefaultAIFSMName}))
	require.ErrorIs(t, ai.ValidateAIConfig(&component.AIConfig{FSM: "stalker_v2"}), ErrUnknownFSM)
}

func TestSentryFSMFileReturnsToGuard(t *testing.T) {
	w := newTestWorld()
	player := addTestPlayer(t, w, 3, 0)
	enemy, err := entity.NewEnemy(w, entity.EnemyConfig{Player: player, Prefab: "sentry.yaml", Validator: NewAISystem()})
	require.NoError(t, err)

	stepWorld(w, 1)
	require.Equal(t, component.StateChase, aiState(t, w, enemy))

	// hide the player; the sentry walks to where it was seen and stands
	// guard there instead of wandering
	transformOf(t, w, player).Y = 10
	addTestWall(t, w, levels.Rect{X: -5, Y: 4, W: 20, H: 1})

	frames := 0
	for aiState(t, w, enemy) == component.StateChase && frames < 120 {
		stepWorld(w, 1)
		frames++
	}
	require.Equal(t, component.StateGuard, aiState(t, w, enemy))
	require.InDelta(t, 3.0, transformOf(t, w, enemy).X, 0.3)
	require.True(t, aiContext(t, w, enemy).Idle)
}

func TestPrefabEditReachesLiveEnemy(t *testing.T) {
	w := ecs.NewWorld()
	ai := NewAISystem()
	w.AddSystem(NewPerceptionSystem(WallTracer{}))
	w.AddSystem(ai)
	player := addTestPlayer(t, w, 3, 0)
	enemy := addTestEnemy(t, w, 0, 0, player, nil, nil)
	ecs.DestroyEntity(w, player)

	stepWorld(w, 1)
	require.Equal(t, component.StateGuard, aiState(t, w, enemy))
	require.True(t, aiContext(t, w, enemy).Idle)

	edited := testEnemySpec()
	edited.FSM = prefabs.FSMSpec{
		Initial: "patrol",
		States: map[string]prefabs.FSMStateSpec{
			"patrol": {OnEnter: []map[string]any{{"set_idle": false}}},
		},
	}
	require.NoError(t, entity.ApplyEnemySpec(w, enemy, edited, ai))
	ai.Reload()

	stepWorld(w, 1)
	require.Equal(t, component.StateID("patrol"), aiState(t, w, enemy), "a state the new FSM lacks restarts it")
	require.False(t, aiContext(t, w, enemy).Idle, "the new on_enter ran")

	err := entity.ApplyEnemySpec(w, enemy, flyAwaySpec(), ai)
	require.ErrorIs(t, err, entity.ErrInvalidBehavior)
	stepWorld(w, 1)
	require.Equal(t, component.StateID("patrol"), aiState(t, w, enemy))
}
