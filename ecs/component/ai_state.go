package component

// StateID identifies an AI FSM state.
type StateID string

// EventID identifies an AI FSM event.
type EventID string

const DefaultAIFSMName = "stalker_default"

// Built-in states of the default enemy FSM. Guard and Idle are both idle
// states; only Idle wanders.
const (
	StateGuard StateID = "guard"
	StateIdle  StateID = "idle"
	StateChase StateID = "chase"
)

// Built-in events.
const (
	EventSeesPlayer    EventID = "sees_player"
	EventPlayerEscaped EventID = "player_escaped"
)

// AIState stores the current FSM state.
type AIState struct {
	Current StateID
}

// AIContext stores per-entity AI runtime data. Systems change it only
// through the transition helpers in the system package.
type AIContext struct {
	// perception
	CanSeePlayer bool
	LastSeenX    float64
	LastSeenY    float64
	NextSeekAt   float64

	// idle is true in every state except chase
	Idle bool

	// attack gating; the deadline lives in Cooldown
	CanAttack bool

	// walls currently touching; HitWall mirrors WallContacts > 0 and
	// WallReversed marks that the wander already turned for this contact
	WallContacts int
	HitWall      bool
	WallReversed bool

	// idle wander
	Wandering     bool
	WanderTargetX float64
	WanderTargetY float64
	WanderDirX    float64
	WanderDirY    float64
}

// AIConfig selects the FSM an entity runs: a compiled prefab spec, a tengo
// script, or an FSM by name (built in, or a prefab file ending in .yaml).
// Prefab is the enemy prefab the entity was built from.
type AIConfig struct {
	Prefab string
	FSM    string
	Spec   *AIFSMSpec
	Script string
}

var AIStateComponent = NewComponent[AIState]()
var AIContextComponent = NewComponent[AIContext]()
var AIConfigComponent = NewComponent[AIConfig]()
