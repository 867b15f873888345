package main

import (
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/stalker/assets"
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/ecs/entity"
	"github.com/milk9111/stalker/ecs/system"
	"github.com/milk9111/stalker/levels"
	"github.com/milk9111/stalker/prefabs"
)

// restartDelay is how long the world keeps running after the player dies.
const restartDelay = 1.5

type Game struct {
	levelName string

	world            *ecs.World
	player           ecs.Entity
	aiSystem         *system.AISystem
	playerController *system.PlayerControllerSystem
	deadAt           float64
	freezeFrames     int

	paused  bool
	quit    bool
	pauseUI *ebitenui.UI
	watcher *prefabs.Watcher
}

func NewGame(levelName string, watch bool) (*Game, error) {
	g := &Game{levelName: levelName}
	if err := g.reset(); err != nil {
		return nil, err
	}
	g.pauseUI = NewPauseUI(g)

	if watch {
		w, err := prefabs.NewWatcher("prefabs", "prefabs/scripts")
		if err != nil {
			log.Printf("prefab watch disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// reset rebuilds the world from the level.
func (g *Game) reset() error {
	lvl, err := levels.LoadLevelFromFS(g.levelName)
	if err != nil {
		return err
	}

	physics := system.NewPhysicsSystem()
	g.aiSystem = system.NewAISystem()
	g.playerController = system.NewPlayerControllerSystem()

	world := ecs.NewWorld()
	world.AddSystem(system.NewInputSystem())
	world.AddSystem(g.playerController)
	world.AddSystem(physics)
	world.AddSystem(system.NewContactSystem())
	world.AddSystem(system.NewCooldownSystem())
	world.AddSystem(system.NewPerceptionSystem(physics))
	world.AddSystem(g.aiSystem)
	world.AddSystem(system.NewMovementSystem())
	world.AddSystem(system.NewClusterRepulsionSystem())
	world.AddSystem(system.NewDamageKnockbackSystem())
	world.AddSystem(system.NewHealthSystem())
	world.AddSystem(system.NewHitFreezeSystem(func(frames int) { g.freezeFrames = frames }))
	world.AddSystem(system.NewWhiteFlashSystem())
	world.AddSystem(system.NewTTLSystem())
	world.AddSystem(system.NewAudioSystem())
	world.AddSystem(system.NewRenderSystem())
	world.AddSystem(system.NewPhysicsDebugSystem(physics))

	player, err := entity.LoadLevelToWorld(world, lvl, assets.Sounds{}, g.aiSystem)
	if err != nil {
		return err
	}

	g.world = world
	g.player = player
	g.deadAt = 0
	g.freezeFrames = 0
	return nil
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	g.drainWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		return g.reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		common.Debug = !common.Debug
	}

	if g.freezeFrames > 0 {
		g.freezeFrames--
		return nil
	}

	g.world.Update()

	if !g.world.IsAlive(g.player) {
		if g.deadAt == 0 {
			g.deadAt = g.world.Now()
			log.Printf("player died at %.2fs", g.deadAt)
		}
		if g.world.Now()-g.deadAt >= restartDelay {
			return g.reset()
		}
	}
	return nil
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reloadPrefab(name)
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("prefab watch: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) reloadPrefab(name string) {
	log.Printf("reloading %s", name)
	switch name {
	case "player.yaml", "shot.yaml":
		g.playerController.Reload()
		return
	}

	// FSM files and scripts are rebuilt lazily; enemy prefabs are pushed
	// onto the live enemies built from them
	g.aiSystem.Reload()
	enemies := g.enemiesFromPrefab(name)
	if len(enemies) == 0 {
		return
	}
	spec, err := prefabs.LoadEnemyPrefab(name)
	if err != nil {
		log.Printf("reload %s: %v", name, err)
		return
	}
	for _, e := range enemies {
		if err := entity.ApplyEnemySpec(g.world, e, spec, g.aiSystem); err != nil {
			log.Printf("reload %s on %s: %v", name, e, err)
		}
	}
}

func (g *Game) enemiesFromPrefab(name string) []ecs.Entity {
	var out []ecs.Entity
	for _, e := range g.world.Query(component.EnemyTagComponent.Kind(), component.AIConfigComponent.Kind()) {
		if cfg, ok := ecs.Get(g.world, e, component.AIConfigComponent.Kind()); ok && cfg.Prefab == name {
			out = append(out, e)
		}
	}
	return out
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.world.Draw(screen)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Close() error {
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
