package ecs

// DefaultTimeStep is the fixed update step used when none is configured.
const DefaultTimeStep = 1.0 / 60.0

// Clock is the world's frame clock. Deadlines stored in components are
// compared against Now.
type Clock struct {
	Now   float64
	Delta float64
	Frame int
	Step  float64
}

// Advance moves the clock forward by dt seconds and counts a frame.
func (c *Clock) Advance(dt float64) {
	if c == nil || dt < 0 {
		return
	}
	c.Now += dt
	c.Delta = dt
	c.Frame++
}

// Tick advances by the configured fixed step.
func (c *Clock) Tick() {
	if c == nil {
		return
	}
	step := c.Step
	if step <= 0 {
		step = DefaultTimeStep
	}
	c.Advance(step)
}
