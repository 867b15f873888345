package entity

import (
	"fmt"

	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/levels"
)

// LoadLevelToWorld builds walls, the player and every enemy of lvl. The
// level must hold exactly one player spawn, placed before the enemies so
// they can target it. An enemy spawn's "prefab" prop picks its prefab;
// ai, when set, validates each enemy's behavior.
func LoadLevelToWorld(world *ecs.World, lvl *levels.Level, sounds SoundLoader, ai AIValidator) (ecs.Entity, error) {
	boundsEntity := world.CreateEntity()
	if err := ecs.Add(world, boundsEntity, component.LevelBoundsComponent.Kind(), &component.LevelBounds{
		Width:  float64(lvl.Width),
		Height: float64(lvl.Height),
	}); err != nil {
		return ecs.Entity{}, fmt.Errorf("level: add bounds: %w", err)
	}

	for _, r := range lvl.Walls() {
		if _, err := NewWall(world, r); err != nil {
			return ecs.Entity{}, err
		}
	}

	playerSpawns := lvl.Spawns("player")
	if len(playerSpawns) != 1 {
		return ecs.Entity{}, fmt.Errorf("level: %d player spawns: %w", len(playerSpawns), ErrMissingPlayer)
	}
	player, err := NewPlayer(world, playerSpawns[0][0], playerSpawns[0][1], sounds)
	if err != nil {
		return ecs.Entity{}, err
	}

	for _, spawn := range lvl.SpawnPoints("enemy") {
		if _, err := NewEnemy(world, EnemyConfig{
			X:         spawn.X,
			Y:         spawn.Y,
			Player:    player,
			Prefab:    spawn.Prop("prefab"),
			Sounds:    sounds,
			Validator: ai,
		}); err != nil {
			return ecs.Entity{}, fmt.Errorf("level: enemy at %.1f,%.1f: %w", spawn.X, spawn.Y, err)
		}
	}

	return player, nil
}
