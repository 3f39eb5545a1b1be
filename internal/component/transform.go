package component

// Transform is an entity's 2D placement.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
	Scale    Vec2
}

// Vec2 is a plain value pair; scripts see it as a nested proxy.
type Vec2 struct {
	X float64
	Y float64
}

// Velocity is applied to Transform by MovementSystem every tick.
type Velocity struct {
	X float64
	Y float64
}

// Name is a human readable label, used by prefabs and diagnostics.
type Name struct {
	Value string
}

// Health is a simple gameplay counter scripts like to poke at.
type Health struct {
	Current int
	Max     int
}

// Tag marks entities without carrying data.
type Tag struct{}
