package component

// Clock is the simulation time resource, advanced by ClockSystem.
type Clock struct {
	Tick    uint64
	Elapsed float64 // seconds
	Delta   float64 // seconds of the last tick
}

// Gravity is an optional world-wide acceleration applied to Velocity.
type Gravity struct {
	X float64
	Y float64
}
