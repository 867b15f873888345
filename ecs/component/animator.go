package component

// Animator is the animation cue sink. Only the idle flag is driven.
type Animator struct {
	Idle bool
}

var AnimatorComponent = NewComponent[Animator]()
