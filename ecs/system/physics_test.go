package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/levels"
	"github.com/stretchr/testify/require"
)

// newPhysicsWorld runs the systems a contact needs: the Chipmunk step, the
// contact handlers and the attack cooldown.
func newPhysicsWorld() (*ecs.World, *PhysicsSystem) {
	w := ecs.NewWorld()
	physics := NewPhysicsSystem()
	w.AddSystem(physics)
	w.AddSystem(NewContactSystem())
	w.AddSystem(NewCooldownSystem())
	return w, physics
}

func bodyOf(t *testing.T, w *ecs.World, e ecs.Entity) *cp.Body {
	t.Helper()
	b, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	require.NotNil(t, b.Body, "the body is created on the first step")
	return b.Body
}

func TestPhysicsLineClear(t *testing.T) {
	w, physics := newPhysicsWorld()
	addTestWall(t, w, levels.Rect{X: 2, Y: -1, W: 1, H: 2})
	stepWorld(w, 1)

	cases := []struct {
		name           string
		x0, y0, x1, y1 float64
		mask           uint
		want           bool
	}{
		{"through box", 0, 0, 5, 0, component.LayerWall, false},
		{"short of box", 0, 0, 1.9, 0, component.LayerWall, true},
		{"above box", 0, 2, 5, 2, component.LayerWall, true},
		{"other layers only", 0, 0, 5, 0, component.LayerPlayer, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, physics.LineClear(w, c.x0, c.y0, c.x1, c.y1, c.mask))
			require.Equal(t, c.want, WallTracer{}.LineClear(w, c.x0, c.y0, c.x1, c.y1, c.mask), "both tracers agree")
		})
	}
}

func TestPhysicsContactAttacksOncePerCooldown(t *testing.T) {
	w, _ := newPhysicsWorld()
	player := addTestPlayer(t, w, 0.8, 0)
	require.NoError(t, ecs.Add(w, player, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Radius: 0.4, Static: true}))
	enemy := addTestEnemy(t, w, 0, 0, player, nil, nil)

	stepWorld(w, 1)
	body := bodyOf(t, w, enemy)

	// keep the enemy pressed against the player so the contact persists
	for i := 0; i < 150; i++ {
		body.SetVelocity(2, 0)
		stepWorld(w, 1)
	}

	h, ok := ecs.Get(w, player, component.HealthComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 7.0, h.Current, "three attacks in 2.5s with a 1s cooldown")
}

func TestPhysicsWallEnterAndExit(t *testing.T) {
	w, _ := newPhysicsWorld()
	player := addTestPlayer(t, w, -20, 0)
	enemy := addTestEnemy(t, w, 0, 0, player, nil, nil)
	addTestWall(t, w, levels.Rect{X: 1, Y: -2, W: 1, H: 4})
	ctx := aiContext(t, w, enemy)

	stepWorld(w, 1)
	body := bodyOf(t, w, enemy)
	require.False(t, ctx.HitWall)

	for i := 0; i < 60 && !ctx.HitWall; i++ {
		body.SetVelocity(3, 0)
		stepWorld(w, 1)
	}
	require.True(t, ctx.HitWall)
	require.Equal(t, 1, ctx.WallContacts)

	for i := 0; i < 30; i++ {
		body.SetVelocity(-3, 0)
		stepWorld(w, 1)
	}
	require.False(t, ctx.HitWall)
	require.Zero(t, ctx.WallContacts)
}
