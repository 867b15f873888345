package component

// Collision categories. Each physics shape belongs to one category; line of
// sight queries mask on LayerWall.
const (
	LayerWall uint = 1 << iota
	LayerPlayer
	LayerEnemy
	LayerShot
)

// LayerAll collides with every category.
const LayerAll = ^uint(0)

// CollisionLayer allows entities to declare a collision category and mask
// so the physics system can selectively enable/disable collisions between
// groups of objects.
type CollisionLayer struct {
	// Category is a bitmask of this entity's collision category.
	Category uint `yaml:"category,omitempty"`
	// Mask is a bitmask of categories this entity should collide with. If
	// zero, the physics system will treat it as all-bits set.
	Mask uint `yaml:"mask,omitempty"`
}

var CollisionLayerComponent = NewComponent[CollisionLayer]()
