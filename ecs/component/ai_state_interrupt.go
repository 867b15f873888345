package component

// AIStateInterrupt is a one-shot request to enqueue an FSM event for the
// AISystem. Perception adds it; the AISystem consumes it on its next update.
type AIStateInterrupt struct {
	Event EventID
}

var AIStateInterruptComponent = NewComponent[AIStateInterrupt]()
