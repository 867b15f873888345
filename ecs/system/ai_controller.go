package system

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
)

type AISystem struct {
	fsmCache    map[string]*FSMDef
	fsmErrs     map[string]error
	scriptCache map[ecs.Entity]*scriptedFSM
}

var ErrUnknownFSM = errors.New("ai: unknown fsm")

func NewAISystem() *AISystem {
	e := &AISystem{}
	e.Reload()
	return e
}

func (e *AISystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	e.pruneScripts(w)
	dt := w.Clock().Delta

	entities := w.Query(
		component.AIComponent.Kind(),
		component.AIStateComponent.Kind(),
		component.AIContextComponent.Kind(),
		component.TransformComponent.Kind(),
		component.MoverComponent.Kind(),
	)
	for _, ent := range entities {
		aiComp, ok := ecs.Get(w, ent, component.AIComponent.Kind())
		if !ok {
			continue
		}
		stateComp, ok := ecs.Get(w, ent, component.AIStateComponent.Kind())
		if !ok {
			continue
		}
		ctxComp, ok := ecs.Get(w, ent, component.AIContextComponent.Kind())
		if !ok {
			continue
		}
		transform, ok := ecs.Get(w, ent, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		mover, ok := ecs.Get(w, ent, component.MoverComponent.Kind())
		if !ok {
			continue
		}
		cfgComp, ok := ecs.Get(w, ent, component.AIConfigComponent.Kind())
		if !ok {
			cfgComp = &component.AIConfig{FSM: component.DefaultAIFSMName}
		}

		pendingEvents := make([]component.EventID, 0, 4)
		enqueue := func(ev component.EventID) {
			if ev == "" {
				return
			}
			pendingEvents = append(pendingEvents, ev)
		}

		// Consume one-shot interrupts (e.g. from perception).
		if irq, ok := ecs.Get(w, ent, component.AIStateInterruptComponent.Kind()); ok {
			enqueue(irq.Event)
			_ = ecs.Remove(w, ent, component.AIStateInterruptComponent.Kind())
		}

		playerX, playerY, playerFound := targetPosition(w, ent)

		ctx := &AIActionContext{
			World:        w,
			Entity:       ent,
			AI:           aiComp,
			State:        stateComp,
			Context:      ctxComp,
			Config:       cfgComp,
			Transform:    transform,
			Mover:        mover,
			PlayerFound:  playerFound,
			PlayerX:      playerX,
			PlayerY:      playerY,
			Dt:           dt,
			EnqueueEvent: enqueue,
		}

		if strings.TrimSpace(cfgComp.Script) != "" {
			e.updateFromScript(ctx, cfgComp.Script, pendingEvents)
			continue
		}

		fsm, err := e.resolveFSM(cfgComp)
		if err != nil {
			continue
		}

		// a fresh entity, or one whose FSM was swapped by a reload, starts
		// over in the initial state
		if _, ok := fsm.States[stateComp.Current]; !ok {
			if stateComp.Current != "" {
				log.Printf("ai: entity=%s state %q gone, restarting in %q", ent, stateComp.Current, fsm.Initial)
			}
			stateComp.Current = fsm.Initial
			applyActions(fsm.States[stateComp.Current].OnEnter, ctx)
		}

		// While actions run first so they can enqueue events handled in the
		// same tick.
		applyActions(fsm.States[stateComp.Current].While, ctx)

		for _, ch := range fsm.Checkers {
			if ch.From != stateComp.Current {
				continue
			}
			if ch.Check != nil && ch.Check(ctx) {
				enqueue(ch.Event)
			}
		}

		processEvents(fsm, stateComp, ctx, pendingEvents)
	}
}

// ValidateAIConfig builds the FSM or script cfg selects and reports why it
// cannot run. Entity constructors call it before spawning.
func (e *AISystem) ValidateAIConfig(cfg *component.AIConfig) error {
	if cfg == nil {
		return ErrUnknownFSM
	}
	if path := strings.TrimSpace(cfg.Script); path != "" {
		_, err := loadScriptedFSM(path)
		return err
	}
	_, err := e.resolveFSM(cfg)
	return err
}

func (e *AISystem) resolveFSM(cfg *component.AIConfig) (*FSMDef, error) {
	if cfg.Spec == nil {
		return e.getFSM(cfg.FSM)
	}
	spec := cfg.Spec
	return e.cached(fmt.Sprintf("spec_%p", spec), func() (*FSMDef, error) {
		return CompileFSMSpec(spec)
	})
}

func (e *AISystem) getFSM(name string) (*FSMDef, error) {
	if name == "" {
		name = component.DefaultAIFSMName
	}
	return e.cached(name, func() (*FSMDef, error) {
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			return LoadFSMFromPrefab(name)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownFSM, name)
	})
}

// cached builds the FSM under key once. Failures are remembered too, so a
// broken prefab is logged once rather than every frame.
func (e *AISystem) cached(key string, build func() (*FSMDef, error)) (*FSMDef, error) {
	if e.fsmCache == nil {
		e.Reload()
	}
	if fsm, ok := e.fsmCache[key]; ok {
		return fsm, nil
	}
	if err, ok := e.fsmErrs[key]; ok {
		return nil, err
	}
	fsm, err := build()
	if err != nil {
		log.Printf("ai: fsm %s: %v", key, err)
		e.fsmErrs[key] = err
		return nil, err
	}
	e.fsmCache[key] = fsm
	return fsm, nil
}

// Reload drops compiled prefab FSMs and scripts so they are rebuilt from
// disk on the next update.
func (e *AISystem) Reload() {
	if e == nil {
		return
	}
	e.fsmCache = map[string]*FSMDef{
		component.DefaultAIFSMName: DefaultEnemyFSM(),
	}
	e.fsmErrs = map[string]error{}
	e.scriptCache = map[ecs.Entity]*scriptedFSM{}
}

func (e *AISystem) pruneScripts(w *ecs.World) {
	for ent := range e.scriptCache {
		if !w.IsAlive(ent) {
			delete(e.scriptCache, ent)
		}
	}
}

// targetPosition resolves the entity's AITarget. A missing or destroyed
// target reports found=false.
func targetPosition(w *ecs.World, e ecs.Entity) (x, y float64, found bool) {
	target, ok := ecs.Get(w, e, component.AITargetComponent.Kind())
	if !ok {
		return 0, 0, false
	}
	player := ecs.Entity{ID: target.ID, Gen: target.Gen}
	if !w.IsAlive(player) {
		return 0, 0, false
	}
	t, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return 0, 0, false
	}
	return t.X, t.Y, true
}

func processEvents(fsm *FSMDef, state *component.AIState, ctx *AIActionContext, events []component.EventID) {
	if fsm == nil || state == nil || ctx == nil {
		return
	}
	for i := 0; i < len(events); i++ {
		transitions, ok := fsm.Transitions[state.Current]
		if !ok {
			continue
		}
		next, ok := transitions[events[i]]
		if !ok || next == state.Current {
			continue
		}
		if ctx.World != nil && !ctx.World.IsAlive(ctx.Entity) {
			return
		}
		applyActions(fsm.States[state.Current].OnExit, ctx)
		state.Current = next
		applyActions(fsm.States[state.Current].OnEnter, ctx)
	}
}

func applyActions(actions []Action, ctx *AIActionContext) {
	for _, a := range actions {
		if a != nil {
			a(ctx)
		}
	}
}
