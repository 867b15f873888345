package common

const (
	BaseWidth  = 1280
	BaseHeight = 720

	// PixelsPerUnit converts world units to screen pixels.
	PixelsPerUnit = 32.0
)

// Debug enables verbose logging and debug overlays. Set from the -debug flag.
var Debug bool
