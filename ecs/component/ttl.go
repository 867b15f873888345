package component

// TTL is a time-to-live in seconds. The TTL system destroys the entity
// once the world clock passes ExpiresAt.
type TTL struct {
	ExpiresAt float64
}

var TTLComponent = NewComponent[TTL]()
