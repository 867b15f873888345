package component

// DamageKnockback is a transient component requesting the knockback system
// apply an impulse to the entity. The system removes it once applied.
type DamageKnockback struct {
	ImpulseX float64
	ImpulseY float64
}

var DamageKnockbackRequestComponent = NewComponent[DamageKnockback]()
