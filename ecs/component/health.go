package component

// Health is a damageable target. The entity is removed once Current drops
// to zero or below; there is no floor and no healing.
type Health struct {
	Current float64
	IsEnemy bool
}

var HealthComponent = NewComponent[Health]()
