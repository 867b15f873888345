package component

import "image/color"

// RenderLayer is used to sort draw order deterministically.
type RenderLayer struct {
	Index int
}

var RenderLayerComponent = NewComponent[RenderLayer]()

// Shape is a flat-colored primitive the render system draws in place of a
// sprite.
type Shape struct {
	Color color.Color
	// IdleColor is used instead of Color while an Animator reports idle.
	IdleColor color.Color
	// ShowFacing draws a heading marker along Transform.Rotation.
	ShowFacing bool
}

var ShapeComponent = NewComponent[Shape]()
