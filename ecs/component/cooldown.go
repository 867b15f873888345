package component

// Cooldown marks an entity whose attack is on cooldown until ReadyAt
// (seconds on the world clock). CooldownSystem removes it once the deadline
// passes and re-arms the attack.
type Cooldown struct {
	ReadyAt float64
}

var CooldownComponent = NewComponent[Cooldown]()
