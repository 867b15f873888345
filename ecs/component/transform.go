package component

// Transform is an entity's position in world units and its facing in
// radians (0 = +X, counter-clockwise).
type Transform struct {
	X        float64
	Y        float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
