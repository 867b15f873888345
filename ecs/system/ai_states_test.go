package system

import (
	"testing"

	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/prefabs"
	"github.com/stretchr/testify/require"
)

func TestCompileFSMErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  RawFSM
		want string
	}{
		{
			name: "missing initial",
			raw:  RawFSM{States: map[string]RawState{"a": {}}},
			want: "missing initial",
		},
		{
			name: "undefined initial",
			raw:  RawFSM{Initial: "b", States: map[string]RawState{"a": {}}},
			want: "not defined",
		},
		{
			name: "unknown action",
			raw: RawFSM{Initial: "a", States: map[string]RawState{
				"a": {OnEnter: []map[string]any{{"teleport": nil}}},
			}},
			want: "unknown action",
		},
		{
			name: "unknown target",
			raw: RawFSM{
				Initial:     "a",
				States:      map[string]RawState{"a": {}},
				Transitions: map[string]any{"a": map[string]any{"go": "nowhere"}},
			},
			want: "unknown state",
		},
		{
			name: "checker without target",
			raw: RawFSM{
				Initial:     "a",
				States:      map[string]RawState{"a": {}},
				Transitions: map[string]any{"a": []any{map[string]any{"can_see_player": map[string]any{"arg": 1}}}},
			},
			want: "missing to state",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := CompileFSM(c.raw)
			require.Error(t, err)
			require.Contains(t, err.Error(), c.want)
		})
	}
}

func TestCompileFSMCheckers(t *testing.T) {
	fsm, err := CompileFSM(RawFSM{
		Initial: "chase",
		States: map[string]RawState{
			"chase": {While: []map[string]any{{"chase": nil}}},
			"idle":  {OnEnter: []map[string]any{{"set_idle": true}}},
		},
		Transitions: map[string]any{
			"chase": []any{
				map[string]any{"lost_player": map[string]any{"to": "idle", "arg": 0.5}},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, fsm.Checkers, 1)

	ctx := &AIActionContext{
		AI:        &component.AI{ArriveDistance: 0.1},
		Context:   &component.AIContext{LastSeenX: 1},
		Transform: &component.Transform{X: 0.7},
	}
	require.True(t, fsm.Checkers[0].Check(ctx), "arg overrides the arrive distance")

	ctx.Context.CanSeePlayer = true
	require.False(t, fsm.Checkers[0].Check(ctx))
}

func TestEnemyPrefabFSMCompiles(t *testing.T) {
	spec, err := prefabs.LoadEnemySpec()
	require.NoError(t, err)
	require.False(t, spec.FSM.Empty())

	fsm, err := CompileFSMSpec(&component.AIFSMSpec{
		Initial:     spec.FSM.Initial,
		States:      toComponentStates(spec.FSM.States),
		Transitions: spec.FSM.Transitions,
	})
	require.NoError(t, err)
	require.Equal(t, component.StateGuard, fsm.Initial)
	require.Equal(t, component.StateChase, fsm.Transitions[component.StateGuard][component.EventSeesPlayer])
	require.Equal(t, component.StateIdle, fsm.Transitions[component.StateChase][component.EventPlayerEscaped])
}

func toComponentStates(in map[string]prefabs.FSMStateSpec) map[string]component.AIFSMStateSpec {
	out := make(map[string]component.AIFSMStateSpec, len(in))
	for k, v := range in {
		out[k] = component.AIFSMStateSpec{OnEnter: v.OnEnter, While: v.While, OnExit: v.OnExit}
	}
	return out
}

func TestDefaultEnemyFSMShape(t *testing.T) {
	fsm := DefaultEnemyFSM()
	require.Equal(t, component.StateGuard, fsm.Initial)
	for _, s := range []component.StateID{component.StateGuard, component.StateIdle, component.StateChase} {
		_, ok := fsm.States[s]
		require.True(t, ok, "state %s", s)
	}
	_, ok := fsm.Transitions[component.StateChase][component.EventSeesPlayer]
	require.False(t, ok, "chase ignores sees_player")
}

func TestEmitEventAction(t *testing.T) {
	var got []component.EventID
	ctx := &AIActionContext{EnqueueEvent: func(ev component.EventID) { got = append(got, ev) }}
	actionRegistry["emit_event"]("custom")(ctx)
	require.Equal(t, []component.EventID{"custom"}, got)
}

func TestLoadFSMFromPrefab(t *testing.T) {
	fsm, err := LoadFSMFromPrefab("sentry_fsm.yaml")
	require.NoError(t, err)
	require.Equal(t, component.StateGuard, fsm.Initial)
	require.Equal(t, component.StateChase, fsm.Transitions[component.StateGuard][component.EventSeesPlayer])
	require.Len(t, fsm.Checkers, 1)
	require.Equal(t, component.StateChase, fsm.Checkers[0].From)

	_, err = LoadFSMFromPrefab("missing_fsm.yaml")
	require.Error(t, err)
}
