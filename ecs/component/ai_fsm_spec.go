package component

// AIFSMSpec is an enemy state machine taken from a prefab, decoupled from
// its YAML form. Transitions are keyed by source state and hold the
// decoded YAML value: an event map or a list of condition entries.
type AIFSMSpec struct {
	Initial     string
	States      map[string]AIFSMStateSpec
	Transitions map[string]any
}

// AIFSMStateSpec holds the action lists of one state. Each entry is a
// single-key map of action name to argument.
type AIFSMStateSpec struct {
	OnEnter []map[string]any
	While   []map[string]any
	OnExit  []map[string]any
}
