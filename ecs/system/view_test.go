package system

import (
	"testing"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/stretchr/testify/require"
)

func TestLevelViewCentersBounds(t *testing.T) {
	w := ecs.NewWorld()

	v := levelView(w, 0)
	require.Equal(t, common.PixelsPerUnit, v.scale)
	require.Zero(t, v.ox)
	require.Zero(t, v.oy)

	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.LevelBoundsComponent.Kind(), &component.LevelBounds{Width: 20, Height: 10}))

	v = levelView(w, 32)
	require.InDelta(t, (common.BaseWidth-640)/2.0, v.ox, 1e-9)
	require.InDelta(t, (common.BaseHeight-320)/2.0, v.oy, 1e-9)

	sx, sy := v.toScreen(3, 4)
	x, y := v.toWorld(sx, sy)
	require.InDelta(t, 3, x, 1e-9)
	require.InDelta(t, 4, y, 1e-9)
}
