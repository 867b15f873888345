package system

import (
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs/component"
)

// The helpers below are the only code that writes AIContext flags.

// observePlayer records the result of one perception cycle.
func observePlayer(c *component.AIContext, visible bool, x, y float64) {
	c.CanSeePlayer = visible
	if visible {
		c.LastSeenX = x
		c.LastSeenY = y
	}
}

func markIdle(c *component.AIContext, idle bool) {
	c.Idle = idle
}

// markWallContact counts wall contacts so overlapping walls only clear
// HitWall once the last one separates.
func markWallContact(c *component.AIContext, touching bool) {
	if touching {
		c.WallContacts++
	} else if c.WallContacts > 0 {
		c.WallContacts--
	}
	c.HitWall = c.WallContacts > 0
	if !c.HitWall {
		c.WallReversed = false
	}
}

// takeAttack reports whether an attack may happen now and disarms it.
func takeAttack(c *component.AIContext) bool {
	if !c.CanAttack {
		return false
	}
	c.CanAttack = false
	return true
}

func rearmAttack(c *component.AIContext) {
	c.CanAttack = true
}

// beginWander picks the first wander target dist units along dir from
// (x, y) and returns it.
func beginWander(c *component.AIContext, x, y, dirX, dirY, dist float64) (float64, float64) {
	c.Wandering = true
	c.WanderDirX = dirX
	c.WanderDirY = dirY
	c.WanderTargetX = x + dirX*dist
	c.WanderTargetY = y + dirY*dist
	return c.WanderTargetX, c.WanderTargetY
}

// reverseWander mirrors the wander offset around (x, y) and flips the
// wander direction.
func reverseWander(c *component.AIContext, x, y, dist float64) (float64, float64) {
	c.WanderTargetX = x - c.WanderDirX*dist
	c.WanderTargetY = y - c.WanderDirY*dist
	c.WanderDirX = -c.WanderDirX
	c.WanderDirY = -c.WanderDirY
	c.WallReversed = c.HitWall
	return c.WanderTargetX, c.WanderTargetY
}

func endWander(c *component.AIContext) {
	c.Wandering = false
}

func distanceToLastSeen(c *component.AIContext, x, y float64) float64 {
	return common.Distance(x, y, c.LastSeenX, c.LastSeenY)
}
