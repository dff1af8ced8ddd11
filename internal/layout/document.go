// Package layout persists and validates the venue layout document. It
// encodes element collections through an ordered map so serialized layouts
// are byte-stable across runs and diff cleanly in source control.
package layout

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/iancoleman/orderedmap"

	"crowdsim/internal/simconfig"
)

// Document is the self-describing record persisted to disk. FormatVersion
// lets a consumer detect older layouts; backwards compatibility is the
// consumer's responsibility.
type Document struct {
	FormatVersion int                    `json:"formatVersion"`
	Width         float64                `json:"width"`
	Height        float64                `json:"height"`
	Walls         []WallDocument         `json:"walls"`
	Entrances     []EntranceDocument     `json:"entrances"`
	Exits         []ExitDocument         `json:"exits"`
	Attractors    []AttractorDocument    `json:"attractors"`
}

const CurrentFormatVersion = 1

type WallDocument struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type EntranceDocument struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

type ExitDocument struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Capacity float64 `json:"capacity"`
}

type AttractorDocument struct {
	ID            string  `json:"id"`
	Label         string  `json:"label,omitempty"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Radius        float64 `json:"radius"`
	Weight        float64 `json:"weight"`
	ServiceTime   float64 `json:"serviceTime"`
	Queueing      bool    `json:"queueing"`
	QueueCapacity int     `json:"queueCapacity,omitempty"`
}

// FromVenueLayout converts the in-memory layout to its persisted form.
func FromVenueLayout(v simconfig.VenueLayout) Document {
	doc := Document{FormatVersion: CurrentFormatVersion, Width: v.Width, Height: v.Height}
	for _, w := range v.Walls {
		doc.Walls = append(doc.Walls, WallDocument{ID: w.ID, X: w.Rect.X, Y: w.Rect.Y, Width: w.Rect.Width, Height: w.Rect.Height})
	}
	for _, e := range v.Entrances {
		doc.Entrances = append(doc.Entrances, EntranceDocument{ID: e.ID, X: e.X, Y: e.Y, Width: e.Width})
	}
	for _, e := range v.Exits {
		doc.Exits = append(doc.Exits, ExitDocument{ID: e.ID, X: e.X, Y: e.Y, Width: e.Width, Capacity: e.Capacity})
	}
	for _, a := range v.Attractors {
		doc.Attractors = append(doc.Attractors, AttractorDocument{
			ID: a.ID, Label: a.Label, X: a.X, Y: a.Y, Radius: a.Radius, Weight: a.Weight,
			ServiceTime: a.ServiceTime, Queueing: a.Queueing, QueueCapacity: a.QueueCapacity,
		})
	}
	return doc
}

// ToVenueLayout converts a persisted document back into the runtime layout.
func (doc Document) ToVenueLayout() simconfig.VenueLayout {
	v := simconfig.VenueLayout{Width: doc.Width, Height: doc.Height}
	for _, w := range doc.Walls {
		v.Walls = append(v.Walls, simconfig.Wall{ID: w.ID, Rect: simconfig.Rect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}})
	}
	for _, e := range doc.Entrances {
		v.Entrances = append(v.Entrances, simconfig.Entrance{ID: e.ID, X: e.X, Y: e.Y, Width: e.Width})
	}
	for _, e := range doc.Exits {
		v.Exits = append(v.Exits, simconfig.Exit{ID: e.ID, X: e.X, Y: e.Y, Width: e.Width, Capacity: e.Capacity})
	}
	for _, a := range doc.Attractors {
		v.Attractors = append(v.Attractors, simconfig.Attractor{
			ID: a.ID, Label: a.Label, X: a.X, Y: a.Y, Radius: a.Radius, Weight: a.Weight,
			ServiceTime: a.ServiceTime, Queueing: a.Queueing, QueueCapacity: a.QueueCapacity,
		})
	}
	return v
}

// MarshalOrdered serializes the document with a stable top-level key order,
// independent of Go struct field reordering, via an ordered map keyed in
// the same order layout authors read the format (geometry first, then
// element collections).
func MarshalOrdered(doc Document) ([]byte, error) {
	om := orderedmap.New()
	om.Set("formatVersion", doc.FormatVersion)
	om.Set("width", doc.Width)
	om.Set("height", doc.Height)
	om.Set("walls", doc.Walls)
	om.Set("entrances", doc.Entrances)
	om.Set("exits", doc.Exits)
	om.Set("attractors", doc.Attractors)
	return json.MarshalIndent(om, "", "  ")
}

// Unmarshal parses a persisted layout document.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("layout: unmarshal: %w", err)
	}
	if doc.FormatVersion == 0 {
		doc.FormatVersion = CurrentFormatVersion
	}
	return doc, nil
}
