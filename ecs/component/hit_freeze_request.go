package component

// HitFreezeRequest asks the game loop to hold the world still for Frames
// updates, e.g. after an enemy lands an attack on the player.
type HitFreezeRequest struct {
	Frames int
}

var HitFreezeRequestComponent = NewComponent[HitFreezeRequest]()
