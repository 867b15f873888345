package component

// Shot is a projectile. Velocity lives on its physics body.
type Shot struct {
	Damage    float64
	EnemyShot bool
	HitSound  string
}

var ShotComponent = NewComponent[Shot]()

// Shooter lets an entity fire shots from a prefab.
type Shooter struct {
	Prefab     string
	Speed      float64
	Cooldown   float64
	ReadyAt    float64
	SpawnAhead float64
}

var ShooterComponent = NewComponent[Shooter]()
