package component

// WhiteFlash makes a Shape render as full white while On. Timing is frame
// based; the white flash system toggles On every Interval frames until
// Frames runs out.
type WhiteFlash struct {
	// Frames remaining for the whole flash effect (in update ticks)
	Frames int
	// Interval in frames between toggles of the white-on state
	Interval int
	// internal timer (frames) used to count toward the next toggle
	Timer int
	// On determines whether the shape should currently be rendered white
	On bool
}

var WhiteFlashComponent = NewComponent[WhiteFlash]()
