package system

import (
	"errors"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/prefabs"
)

// scriptedFSM runs a tengo script that defines onEnter, update and onExit.
// Each enemy owns one so the script's state map is private to it.
type scriptedFSM struct {
	path     string
	compiled *tengo.Compiled
	memory   *tengo.Map
	initial  component.StateID
	started  bool
	next     component.StateID
}

// hookDispatch is appended to every script; __hook selects the function.
const hookDispatch = `
if __hook == "enter" {
	onEnter(__engine, __memory, __current)
} else if __hook == "update" {
	update(__engine, __memory, __current)
} else if __hook == "exit" {
	onExit(__engine, __memory, __current)
}
`

// scriptModules are the tengo stdlib modules a behavior script may import.
var scriptModules = []string{"math", "fmt", "rand"}

var errEmptyScriptPath = errors.New("ai: empty script path")

func loadScriptedFSM(path string) (*scriptedFSM, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errEmptyScriptPath
	}
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + hookDispatch))
	script.SetImports(stdlib.GetModuleMap(scriptModules...))
	for _, name := range []string{"__hook", "__current"} {
		_ = script.Add(name, "")
	}
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__memory", map[string]any{})

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	s := &scriptedFSM{
		path:     path,
		compiled: compiled,
		memory:   &tengo.Map{Value: map[string]tengo.Object{}},
		initial:  component.StateGuard,
	}

	// one run with an unknown hook evaluates the top level, which defines
	// initial_state
	if err := s.call("load", s.initial, nil); err != nil {
		return nil, err
	}
	if compiled.IsDefined("initial_state") {
		if id := strings.TrimSpace(tengoString(compiled.Get("initial_state").Object())); id != "" {
			s.initial = component.StateID(id)
		}
	}
	return s, nil
}

func (s *scriptedFSM) call(hook string, current component.StateID, engine *tengo.ImmutableMap) error {
	if engine == nil {
		engine = &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	}
	vars := map[string]any{
		"__hook":    hook,
		"__engine":  engine,
		"__memory":  s.memory,
		"__current": string(current),
	}
	for name, v := range vars {
		if err := s.compiled.Set(name, v); err != nil {
			return err
		}
	}
	return s.compiled.Run()
}

// step runs one frame: onEnter on the first frame, then update, then the
// exit/enter pair if update asked for a transition.
func (s *scriptedFSM) step(ctx *AIActionContext, events []component.EventID) error {
	if ctx.State.Current == "" {
		ctx.State.Current = s.initial
	}

	raised := make(map[string]bool, len(events))
	for _, ev := range events {
		if ev != "" {
			raised[string(ev)] = true
		}
	}
	// actions such as chase raise events the script checks in the same
	// update
	ctx.EnqueueEvent = func(ev component.EventID) {
		if ev != "" {
			raised[string(ev)] = true
		}
	}

	engine := newScriptEngine(ctx, s, raised)
	if !s.started {
		if err := s.call("enter", ctx.State.Current, engine); err != nil {
			return err
		}
		s.started = true
	}

	if err := s.call("update", ctx.State.Current, engine); err != nil {
		return err
	}

	next := s.next
	s.next = ""
	if next == "" || next == ctx.State.Current {
		return nil
	}

	if err := s.call("exit", ctx.State.Current, engine); err != nil {
		return err
	}
	ctx.State.Current = next
	return s.call("enter", next, engine)
}

func (e *AISystem) updateFromScript(ctx *AIActionContext, path string, events []component.EventID) {
	if e == nil || ctx == nil || ctx.State == nil {
		return
	}

	s, ok := e.scriptCache[ctx.Entity]
	if !ok || s.path != path {
		var err error
		s, err = loadScriptedFSM(path)
		if err != nil {
			log.Printf("ai: entity=%s load script %s: %v", ctx.Entity, path, err)
			return
		}
		// after a reload the entity keeps its state; onEnter already ran
		s.started = ctx.State.Current != ""
		if e.scriptCache == nil {
			e.scriptCache = map[ecs.Entity]*scriptedFSM{}
		}
		e.scriptCache[ctx.Entity] = s
	}

	if err := s.step(ctx, events); err != nil {
		log.Printf("ai: entity=%s script %s: %v", ctx.Entity, path, err)
	}
}

// scriptEngine collects the functions exposed to a script as `engine`.
type scriptEngine map[string]tengo.Object

func (se scriptEngine) fn(name string, f func(args ...tengo.Object) (tengo.Object, error)) {
	se[name] = &tengo.UserFunction{Name: name, Value: f}
}

func (se scriptEngine) flag(name string, get func() bool) {
	se.fn(name, func(...tengo.Object) (tengo.Object, error) {
		if get() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	})
}

func (se scriptEngine) number(name string, get func() float64) {
	se.fn(name, func(...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: get()}, nil
	})
}

func pointObject(x, y float64) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}
}

func firstArg(args []tengo.Object) any {
	if len(args) == 0 {
		return nil
	}
	return fromTengo(args[0])
}

func newScriptEngine(ctx *AIActionContext, s *scriptedFSM, raised map[string]bool) *tengo.ImmutableMap {
	se := scriptEngine{}

	// registry actions and checkers share their FSM names, so scripts and
	// prefab FSMs read the same
	for name, makeAction := range actionRegistry {
		makeAction := makeAction
		se.fn(name, func(args ...tengo.Object) (tengo.Object, error) {
			makeAction(firstArg(args))(ctx)
			return tengo.TrueValue, nil
		})
	}
	for name, makeCheck := range transitionRegistry {
		if _, taken := se[name]; taken {
			continue
		}
		makeCheck := makeCheck
		se.fn(name, func(args ...tengo.Object) (tengo.Object, error) {
			if makeCheck(firstArg(args))(ctx) {
				return tengo.TrueValue, nil
			}
			return tengo.FalseValue, nil
		})
	}

	se.fn("transition", func(args ...tengo.Object) (tengo.Object, error) {
		id, _ := firstArg(args).(string)
		if id = strings.TrimSpace(id); id == "" {
			return tengo.FalseValue, nil
		}
		s.next = component.StateID(id)
		return tengo.TrueValue, nil
	})
	se.fn("event", func(args ...tengo.Object) (tengo.Object, error) {
		name, _ := firstArg(args).(string)
		if raised[strings.TrimSpace(name)] {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	})
	se.fn("emit", func(args ...tengo.Object) (tengo.Object, error) {
		name, _ := firstArg(args).(string)
		if name = strings.TrimSpace(name); name == "" {
			return tengo.FalseValue, nil
		}
		raised[name] = true
		return tengo.TrueValue, nil
	})

	se.flag("can_see_player", func() bool { return ctx.Context != nil && ctx.Context.CanSeePlayer })
	se.flag("is_idle", func() bool { return ctx.Context != nil && ctx.Context.Idle })
	se.number("distance_to_last_seen", func() float64 {
		if ctx.Context == nil || ctx.Transform == nil {
			return 0
		}
		return distanceToLastSeen(ctx.Context, ctx.Transform.X, ctx.Transform.Y)
	})
	se.number("arrive_distance", func() float64 {
		if ctx.AI == nil {
			return 0
		}
		return ctx.AI.ArriveDistance
	})

	se.fn("get_position", func(...tengo.Object) (tengo.Object, error) {
		if ctx.Transform == nil {
			return pointObject(0, 0), nil
		}
		return pointObject(ctx.Transform.X, ctx.Transform.Y), nil
	})
	se.fn("get_player_position", func(...tengo.Object) (tengo.Object, error) {
		if !ctx.PlayerFound {
			return tengo.UndefinedValue, nil
		}
		return pointObject(ctx.PlayerX, ctx.PlayerY), nil
	})

	return &tengo.ImmutableMap{Value: se}
}

func tengoString(obj tengo.Object) string {
	if str, ok := obj.(*tengo.String); ok {
		return str.Value
	}
	if obj == nil {
		return ""
	}
	return strings.Trim(obj.String(), "\"")
}

// fromTengo converts script values into the plain Go values registry
// actions take as arguments.
func fromTengo(obj tengo.Object) any {
	switch v := obj.(type) {
	case nil, *tengo.Undefined:
		return nil
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, len(v.Value))
		for i, item := range v.Value {
			out[i] = fromTengo(item)
		}
		return out
	case *tengo.Map:
		return mapFromTengo(v.Value)
	case *tengo.ImmutableMap:
		return mapFromTengo(v.Value)
	default:
		return v.String()
	}
}

func mapFromTengo(m map[string]tengo.Object) map[string]any {
	out := make(map[string]any, len(m))
	for k, item := range m {
		out[k] = fromTengo(item)
	}
	return out
}
