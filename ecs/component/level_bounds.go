package component

// LevelBounds is the size of the loaded level in world units. Rendering and
// aim input use it to center the level in the window.
type LevelBounds struct {
	Width  float64
	Height float64
}

var LevelBoundsComponent = NewComponent[LevelBounds]()
