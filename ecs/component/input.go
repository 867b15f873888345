package component

// Input stores per-frame input state for an entity.
type Input struct {
	MoveX float64
	MoveY float64
	// AimX/AimY is the aim point in world units.
	AimX  float64
	AimY  float64
	Shoot bool
}

var InputComponent = NewComponent[Input]()
