package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type EnemyTag struct{}

var EnemyTagComponent = NewComponent[EnemyTag]()

// WallTag marks obstruction geometry: it blocks line of sight and makes
// wandering enemies turn around.
type WallTag struct{}

var WallTagComponent = NewComponent[WallTag]()
