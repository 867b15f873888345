package system

import (
	"fmt"
	"log"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/prefabs"
)

type Action func(ctx *AIActionContext)

type AIActionContext struct {
	World     *ecs.World
	Entity    ecs.Entity
	AI        *component.AI
	State     *component.AIState
	Context   *component.AIContext
	Config    *component.AIConfig
	Transform *component.Transform
	Mover     *component.Mover
	// PlayerFound is false when the target is missing or destroyed.
	PlayerFound  bool
	PlayerX      float64
	PlayerY      float64
	Dt           float64
	EnqueueEvent func(ev component.EventID)
}

type StateDef struct {
	OnEnter []Action
	While   []Action
	OnExit  []Action
}

type FSMDef struct {
	Initial     component.StateID
	States      map[component.StateID]StateDef
	Transitions map[component.StateID]map[component.EventID]component.StateID
	Checkers    []TransitionCheckerDef
}

type RawFSM struct {
	Initial string              `yaml:"initial"`
	States  map[string]RawState `yaml:"states"`
	// Transitions is either map[from]map[event]to or
	// map[from][]map[condition]value where condition names are looked up
	// in the transition registry.
	Transitions map[string]any `yaml:"transitions"`
}

type RawState struct {
	OnEnter []map[string]any `yaml:"on_enter"`
	While   []map[string]any `yaml:"while"`
	OnExit  []map[string]any `yaml:"on_exit"`
}

var actionRegistry = map[string]func(any) Action{
	"print": func(arg any) Action {
		msg := fmt.Sprint(arg)
		return func(ctx *AIActionContext) {
			log.Println("ai:", msg)
		}
	},
	"set_idle": func(arg any) Action {
		idle := asBool(arg)
		return func(ctx *AIActionContext) {
			if ctx == nil || ctx.Context == nil {
				return
			}
			markIdle(ctx.Context, idle)
			setIdleCue(ctx.World, ctx.Entity, idle)
		}
	},
	"play": func(arg any) Action {
		name := fmt.Sprint(arg)
		return func(ctx *AIActionContext) {
			if ctx == nil || ctx.World == nil {
				return
			}
			requestSound(ctx.World, ctx.Entity, name)
		}
	},
	"stop": func(_ any) Action {
		return func(ctx *AIActionContext) {
			if ctx == nil {
				return
			}
			stopMover(ctx.Mover)
		}
	},
	"start_wander": func(_ any) Action {
		return func(ctx *AIActionContext) {
			if ctx == nil || ctx.Context == nil || ctx.AI == nil || ctx.Transform == nil || ctx.Mover == nil {
				return
			}
			x, y := ctx.Transform.X, ctx.Transform.Y
			tx, ty := beginWander(ctx.Context, x, y, ctx.Mover.DirX, ctx.Mover.DirY, ctx.AI.WanderDistance)
			moveTowards(ctx.Mover, x, y, tx, ty, ctx.AI.IdleSpeed)
		}
	},
	"stop_wander": func(_ any) Action {
		return func(ctx *AIActionContext) {
			if ctx == nil || ctx.Context == nil {
				return
			}
			endWander(ctx.Context)
		}
	},
	"wander": func(_ any) Action {
		return func(ctx *AIActionContext) {
			if ctx == nil || ctx.Context == nil || ctx.AI == nil || ctx.Transform == nil || ctx.Mover == nil {
				return
			}
			c := ctx.Context
			if !c.Wandering {
				return
			}
			x, y := ctx.Transform.X, ctx.Transform.Y
			arrived := common.Distance(x, y, c.WanderTargetX, c.WanderTargetY) < ctx.AI.WanderArriveDistance
			// a wall turns the wander once per contact
			turn := c.HitWall && !c.WallReversed
			if !turn && !arrived {
				return
			}
			tx, ty := reverseWander(c, x, y, ctx.AI.WanderDistance)
			moveTowards(ctx.Mover, x, y, tx, ty, ctx.AI.IdleSpeed)
		}
	},
	"chase": func(_ any) Action {
		return func(ctx *AIActionContext) {
			if ctx == nil || ctx.Context == nil || ctx.AI == nil || ctx.Transform == nil || ctx.Mover == nil {
				return
			}
			c := ctx.Context
			x, y := ctx.Transform.X, ctx.Transform.Y
			if c.CanSeePlayer && ctx.PlayerFound {
				moveTowards(ctx.Mover, x, y, ctx.PlayerX, ctx.PlayerY, ctx.AI.ChaseSpeed)
				return
			}
			if !c.CanSeePlayer && distanceToLastSeen(c, x, y) < ctx.AI.ArriveDistance {
				if ctx.EnqueueEvent != nil {
					ctx.EnqueueEvent(component.EventPlayerEscaped)
				}
				return
			}
			moveTowards(ctx.Mover, x, y, c.LastSeenX, c.LastSeenY, ctx.AI.ChaseSpeed)
		}
	},
	"face_movement": func(_ any) Action {
		return func(ctx *AIActionContext) {
			if ctx == nil || ctx.AI == nil || ctx.Transform == nil || ctx.Mover == nil {
				return
			}
			if ctx.Mover.DirX == 0 && ctx.Mover.DirY == 0 {
				return
			}
			target := math.Atan2(ctx.Mover.DirY, ctx.Mover.DirX)
			ctx.Transform.Rotation = common.LerpAngle(ctx.Transform.Rotation, target, ctx.AI.TurnSpeed*ctx.Dt)
		}
	},
	"emit_event": func(arg any) Action {
		name := fmt.Sprint(arg)
		return func(ctx *AIActionContext) {
			if ctx == nil || ctx.EnqueueEvent == nil {
				return
			}
			ctx.EnqueueEvent(component.EventID(name))
		}
	},
}

type TransitionChecker func(ctx *AIActionContext) bool

type TransitionCheckerDef struct {
	From  component.StateID
	Event component.EventID
	Check TransitionChecker
}

var transitionRegistry = map[string]func(any) TransitionChecker{
	"always": func(arg any) TransitionChecker {
		return func(ctx *AIActionContext) bool { return true }
	},
	"can_see_player": func(arg any) TransitionChecker {
		return func(ctx *AIActionContext) bool {
			return ctx != nil && ctx.Context != nil && ctx.Context.CanSeePlayer
		}
	},
	// lost_player is true once the agent stands on the last known location
	// without seeing the player. The optional arg overrides ArriveDistance.
	"lost_player": func(arg any) TransitionChecker {
		radius := asFloat(arg)
		return func(ctx *AIActionContext) bool {
			if ctx == nil || ctx.Context == nil || ctx.Transform == nil || ctx.AI == nil {
				return false
			}
			if ctx.Context.CanSeePlayer {
				return false
			}
			r := radius
			if r <= 0 {
				r = ctx.AI.ArriveDistance
			}
			return distanceToLastSeen(ctx.Context, ctx.Transform.X, ctx.Transform.Y) < r
		}
	},
	"hit_wall": func(arg any) TransitionChecker {
		return func(ctx *AIActionContext) bool {
			return ctx != nil && ctx.Context != nil && ctx.Context.HitWall
		}
	},
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float64:
		return t
	case float32:
		return float64(t)
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "yes" || t == "1"
	case nil:
		return false
	default:
		return asFloat(v) != 0
	}
}

func CompileFSM(raw RawFSM) (*FSMDef, error) {
	if raw.Initial == "" {
		return nil, fmt.Errorf("fsm: missing initial state")
	}
	if _, ok := raw.States[raw.Initial]; !ok {
		return nil, fmt.Errorf("fsm: initial state %q not defined", raw.Initial)
	}

	states := map[component.StateID]StateDef{}
	build := func(list []map[string]any) ([]Action, error) {
		if len(list) == 0 {
			return nil, nil
		}
		out := make([]Action, 0, len(list))
		for _, e := range list {
			for k, v := range e {
				makeAction, ok := actionRegistry[k]
				if !ok {
					return nil, fmt.Errorf("fsm: unknown action %q", k)
				}
				out = append(out, makeAction(v))
			}
		}
		return out, nil
	}

	for name, s := range raw.States {
		onEnter, err := build(s.OnEnter)
		if err != nil {
			return nil, err
		}
		while, err := build(s.While)
		if err != nil {
			return nil, err
		}
		onExit, err := build(s.OnExit)
		if err != nil {
			return nil, err
		}
		states[component.StateID(name)] = StateDef{
			OnEnter: onEnter,
			While:   while,
			OnExit:  onExit,
		}
	}

	transitions := map[component.StateID]map[component.EventID]component.StateID{}
	var checkers []TransitionCheckerDef

	addChecker := func(from component.StateID, key string, eid component.EventID, val any) error {
		maker := transitionRegistry[key]
		var toState string
		var arg any
		if m, ok := val.(map[string]any); ok {
			if ts, ok := m["to"].(string); ok {
				toState = ts
			}
			arg = m["arg"]
		} else if s, ok := val.(string); ok {
			toState = s
		}
		if toState == "" {
			return fmt.Errorf("fsm: missing to state for transition %s.%s", from, key)
		}
		transitions[from][eid] = component.StateID(toState)
		checkers = append(checkers, TransitionCheckerDef{From: from, Event: eid, Check: maker(arg)})
		return nil
	}

	for from, rawVal := range raw.Transitions {
		fromID := component.StateID(from)
		transitions[fromID] = map[component.EventID]component.StateID{}

		switch v := rawVal.(type) {
		case map[string]any:
			for evName, toVal := range v {
				if _, ok := transitionRegistry[evName]; ok {
					if err := addChecker(fromID, evName, component.EventID(fmt.Sprintf("__cond_%s_%s", from, evName)), toVal); err != nil {
						return nil, err
					}
					continue
				}
				if toStr, ok := toVal.(string); ok {
					transitions[fromID][component.EventID(evName)] = component.StateID(toStr)
					continue
				}
				return nil, fmt.Errorf("fsm: invalid transition value for %s.%s", from, evName)
			}
		case []any:
			for i, item := range v {
				m, ok := item.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("fsm: invalid transition entry %v", item)
				}
				for key, val := range m {
					if _, ok := transitionRegistry[key]; ok {
						if err := addChecker(fromID, key, component.EventID(fmt.Sprintf("__cond_%s_%d", from, i)), val); err != nil {
							return nil, err
						}
						continue
					}
					toState, ok := val.(string)
					if !ok {
						return nil, fmt.Errorf("fsm: invalid transition mapping for %s -> %v", key, val)
					}
					transitions[fromID][component.EventID(key)] = component.StateID(toState)
				}
			}
		default:
			return nil, fmt.Errorf("fsm: invalid transitions type for state %s", from)
		}
	}

	for from, evs := range transitions {
		for ev, to := range evs {
			if _, ok := states[to]; !ok {
				return nil, fmt.Errorf("fsm: transition %s.%s targets unknown state %q", from, ev, to)
			}
		}
	}

	return &FSMDef{
		Initial:     component.StateID(raw.Initial),
		States:      states,
		Transitions: transitions,
		Checkers:    checkers,
	}, nil
}

func LoadFSMFromPrefab(path string) (*FSMDef, error) {
	data, err := prefabs.Load(path)
	if err != nil {
		return nil, err
	}
	var raw RawFSM
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fsm: unmarshal %s: %w", path, err)
	}
	return CompileFSM(raw)
}

// DefaultEnemyFSM is the stalker behavior: it spawns standing guard, chases
// once perception sees the player and wanders after losing them.
func DefaultEnemyFSM() *FSMDef {
	act := func(name string, arg any) Action {
		return actionRegistry[name](arg)
	}

	return &FSMDef{
		Initial: component.StateGuard,
		States: map[component.StateID]StateDef{
			component.StateGuard: {
				OnEnter: []Action{act("set_idle", true)},
			},
			component.StateIdle: {
				OnEnter: []Action{act("set_idle", true), act("start_wander", nil)},
				While:   []Action{act("wander", nil)},
				OnExit:  []Action{act("stop_wander", nil)},
			},
			component.StateChase: {
				OnEnter: []Action{act("set_idle", false), act("play", "start_chasing")},
				While:   []Action{act("chase", nil), act("face_movement", nil)},
			},
		},
		Transitions: map[component.StateID]map[component.EventID]component.StateID{
			component.StateGuard: {
				component.EventSeesPlayer: component.StateChase,
			},
			component.StateIdle: {
				component.EventSeesPlayer: component.StateChase,
			},
			component.StateChase: {
				component.EventPlayerEscaped: component.StateIdle,
			},
		},
	}
}

func CompileFSMSpec(spec *component.AIFSMSpec) (*FSMDef, error) {
	if spec == nil {
		return nil, fmt.Errorf("fsm: nil spec")
	}
	raw := RawFSM{
		Initial:     spec.Initial,
		States:      map[string]RawState{},
		Transitions: spec.Transitions,
	}
	for name, s := range spec.States {
		raw.States[name] = RawState{
			OnEnter: s.OnEnter,
			While:   s.While,
			OnExit:  s.OnExit,
		}
	}
	return CompileFSM(raw)
}
