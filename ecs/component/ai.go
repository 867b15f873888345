package component

// AI holds the enemy tunables. Speeds are world units per second, intervals
// and cooldowns are seconds.
type AI struct {
	ChaseSpeed float64
	IdleSpeed  float64
	TurnSpeed  float64
	Damage     float64

	// SeekInterval is the wait between line of sight checks while the
	// player is not visible; SeekIntervalChasing applies while it is.
	SeekInterval        float64
	SeekIntervalChasing float64

	AttackCooldown float64
	ShotKnockback  float64

	WanderDistance       float64
	ArriveDistance       float64
	WanderArriveDistance float64
}

var AIComponent = NewComponent[AI]()

// AITarget references the entity the AI perceives and chases. It stores the
// raw handle fields because this package cannot import ecs.
type AITarget struct {
	ID  int
	Gen int
}

var AITargetComponent = NewComponent[AITarget]()
