package entity

import (
	"fmt"
	"image/color"

	"github.com/milk9111/stalker/ecs"
	"github.com/milk9111/stalker/ecs/component"
	"github.com/milk9111/stalker/prefabs"
)

func NewPlayer(w *ecs.World, x, y float64, sounds SoundLoader) (ecs.Entity, error) {
	playerSpec, err := prefabs.LoadPlayerSpec()
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("player: load spec: %w", err)
	}
	return NewPlayerFromSpec(w, x, y, playerSpec, sounds)
}

func NewPlayerFromSpec(w *ecs.World, x, y float64, playerSpec *prefabs.PlayerSpec, sounds SoundLoader) (ecs.Entity, error) {
	if playerSpec.Health <= 0 {
		return ecs.Entity{}, fmt.Errorf("player: health %v: %w", playerSpec.Health, ErrInvalidTunable)
	}
	if playerSpec.MoveSpeed < 0 {
		return ecs.Entity{}, fmt.Errorf("player: move_speed %v: %w", playerSpec.MoveSpeed, ErrInvalidTunable)
	}

	audioComp, err := buildAudioComponent(sounds, playerSpec.Audio)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("player: build audio component: %w", err)
	}

	entity := ecs.CreateEntity(w)
	if err := addPlayerComponents(w, entity, x, y, playerSpec, audioComp); err != nil {
		ecs.DestroyEntity(w, entity)
		return ecs.Entity{}, err
	}
	return entity, nil
}

func addPlayerComponents(w *ecs.World, entity ecs.Entity, x, y float64, playerSpec *prefabs.PlayerSpec, audioComp *component.Audio) error {
	if err := ecs.Add(w, entity, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
		return fmt.Errorf("player: add player tag: %w", err)
	}

	if err := ecs.Add(w, entity, component.PlayerComponent.Kind(), &component.Player{MoveSpeed: playerSpec.MoveSpeed}); err != nil {
		return fmt.Errorf("player: add player: %w", err)
	}

	if err := ecs.Add(w, entity, component.InputComponent.Kind(), &component.Input{}); err != nil {
		return fmt.Errorf("player: add input: %w", err)
	}

	if err := ecs.Add(w, entity, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}); err != nil {
		return fmt.Errorf("player: add transform: %w", err)
	}

	if err := ecs.Add(w, entity, component.PhysicsBodyComponent.Kind(), physicsBodyFromSpec(playerSpec.Collider, false)); err != nil {
		return fmt.Errorf("player: add physics body: %w", err)
	}

	if err := ecs.Add(w, entity, component.HealthComponent.Kind(), &component.Health{Current: playerSpec.Health}); err != nil {
		return fmt.Errorf("player: add health: %w", err)
	}

	if playerSpec.Shooter.Speed > 0 {
		if err := ecs.Add(w, entity, component.ShooterComponent.Kind(), &component.Shooter{
			Prefab:     playerSpec.Shooter.Prefab,
			Speed:      playerSpec.Shooter.Speed,
			Cooldown:   playerSpec.Shooter.Cooldown,
			SpawnAhead: playerSpec.Shooter.SpawnAhead,
		}); err != nil {
			return fmt.Errorf("player: add shooter: %w", err)
		}
	}

	if err := ecs.Add(w, entity, component.ShapeComponent.Kind(), &component.Shape{
		Color:      playerSpec.Shape.Color.Or(color.NRGBA{R: 0x2e, G: 0x86, B: 0xde, A: 0xff}),
		ShowFacing: playerSpec.Shape.ShowFacing,
	}); err != nil {
		return fmt.Errorf("player: add shape: %w", err)
	}

	if err := ecs.Add(w, entity, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: playerSpec.RenderLayer.Index}); err != nil {
		return fmt.Errorf("player: add render layer: %w", err)
	}

	if audioComp != nil {
		if err := ecs.Add(w, entity, component.AudioComponent.Kind(), audioComp); err != nil {
			return fmt.Errorf("player: add audio: %w", err)
		}
	}

	return nil
}
