// Package simconfig holds the venue layout and simulation configuration
// types, plus the normalization helpers the kernel depends on.
package simconfig

// Rect is an axis-aligned rectangle in world metres.
type Rect struct {
	X, Y, Width, Height float64
}

// Wall is a blocking rectangle.
type Wall struct {
	ID   string
	Rect Rect
}

// Entrance is a horizontal strip agents spawn along.
type Entrance struct {
	ID    string
	X, Y  float64
	Width float64
}

// Exit is a horizontal strip agents depart through.
type Exit struct {
	ID       string
	X, Y     float64
	Width    float64
	Capacity float64 // nominal flow capacity, informational only
}

// Attractor is a point of interest agents may target.
type Attractor struct {
	ID            string
	Label         string
	X, Y          float64
	Radius        float64
	Weight        float64 // selection weight in [0,1]
	ServiceTime   float64 // seconds
	Queueing      bool
	QueueCapacity int
}

// VenueLayout is the venue geometry, immutable for the duration of a
// run.
type VenueLayout struct {
	Width, Height float64
	Walls         []Wall
	Entrances     []Entrance
	Exits         []Exit
	Attractors    []Attractor
}

// DefaultVenueLayout returns a small single-room layout suitable for
// smoke-testing the kernel and demoing the hosts.
func DefaultVenueLayout() VenueLayout {
	return VenueLayout{
		Width:  20,
		Height: 20,
		Entrances: []Entrance{
			{ID: "entrance-1", X: 0.5, Y: 10, Width: 2},
		},
		Exits: []Exit{
			{ID: "exit-1", X: 19.5, Y: 10, Width: 1.5, Capacity: 2},
		},
		Attractors: []Attractor{
			{ID: "stage", Label: "Stage", X: 10, Y: 2, Radius: 3, Weight: 0.5, ServiceTime: 30, Queueing: false},
			{ID: "bar", Label: "Bar", X: 4, Y: 16, Radius: 1.5, Weight: 0.3, ServiceTime: 20, Queueing: true, QueueCapacity: 8},
			{ID: "restroom", Label: "Restroom", X: 16, Y: 16, Radius: 1, Weight: 0.2, ServiceTime: 45, Queueing: true, QueueCapacity: 4},
		},
	}
}
