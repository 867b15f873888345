package component

// Mover is the movement provider: systems set a target and speed, the
// movement system advances the entity and keeps DirX/DirY pointing along
// the last movement.
type Mover struct {
	TargetX float64
	TargetY float64
	Speed   float64
	Active  bool

	// DirX/DirY is a unit vector. It keeps its last value while the
	// entity stands still.
	DirX float64
	DirY float64

	// Accel limits how fast body velocity is steered towards the desired
	// velocity, in units/s². Zero means instant.
	Accel float64
}

var MoverComponent = NewComponent[Mover]()
