package scene

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// NotFoundError reports a scene id absent from the catalog.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("scene %q not found", e.ID)
}

// InvalidError reports a scene family that cannot produce usable
// geometry.
type InvalidError struct {
	ID     string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("scene %q invalid: %s", e.ID, e.Reason)
}

// Provider loads a scene handle for (id, seed). The same pair always
// yields an identical scene.
type Provider interface {
	Load(id string, seed int64) (*Scene, error)
}

// Family is a fixed scene layout. Layouts are static tables, not
// procedurally generated content; only the spawn pose is seed-randomized
// (by the environment, at reset).
type Family struct {
	Ground      bool
	Boxes       []Box
	SpawnRegion Box
}

// Catalog maps scene ids to built-in families.
type Catalog struct {
	families map[string]Family
}

// NewCatalog returns the catalog with the built-in scene families.
func NewCatalog() *Catalog {
	c := &Catalog{families: make(map[string]Family)}
	for name, fam := range builtinFamilies {
		c.families[name] = fam
	}
	return c
}

// Register adds or replaces a family. Useful for tests and external
// scene tables.
func (c *Catalog) Register(id string, fam Family) {
	c.families[id] = fam
}

// Load returns the scene for (id, seed). Unknown ids fail with
// NotFoundError; families with no queryable geometry fail with
// InvalidError.
func (c *Catalog) Load(id string, seed int64) (*Scene, error) {
	fam, ok := c.families[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	if !fam.Ground && len(fam.Boxes) == 0 {
		return nil, &InvalidError{ID: id, Reason: "no geometry"}
	}
	return &Scene{
		ID:          id,
		Seed:        seed,
		Ground:      fam.Ground,
		Boxes:       fam.Boxes,
		SpawnRegion: fam.SpawnRegion,
	}, nil
}

// builtinFamilies are the fixed scene layouts shipped with the
// simulator. Dimensions in meters, world frame, ground at z=0.
var builtinFamilies = map[string]Family{
	"office": {
		Ground: true,
		Boxes: []Box{
			// Outer walls of a 10x10 room.
			{Min: r3.Vec{X: -5.2, Y: -5.2, Z: 0}, Max: r3.Vec{X: 5.2, Y: -5.0, Z: 3}},
			{Min: r3.Vec{X: -5.2, Y: 5.0, Z: 0}, Max: r3.Vec{X: 5.2, Y: 5.2, Z: 3}},
			{Min: r3.Vec{X: -5.2, Y: -5.2, Z: 0}, Max: r3.Vec{X: -5.0, Y: 5.2, Z: 3}},
			{Min: r3.Vec{X: 5.0, Y: -5.2, Z: 0}, Max: r3.Vec{X: 5.2, Y: 5.2, Z: 3}},
			// Desk-height obstacles.
			{Min: r3.Vec{X: 1.0, Y: 1.0, Z: 0}, Max: r3.Vec{X: 2.2, Y: 1.8, Z: 0.8}},
			{Min: r3.Vec{X: -2.5, Y: -1.5, Z: 0}, Max: r3.Vec{X: -1.3, Y: -0.7, Z: 0.8}},
		},
		SpawnRegion: Box{
			Min: r3.Vec{X: -2, Y: -2, Z: 1},
			Max: r3.Vec{X: 2, Y: 2, Z: 2.5},
		},
	},
	"warehouse": {
		Ground: true,
		Boxes: []Box{
			// Shelving rows in a 30x20 hall.
			{Min: r3.Vec{X: -10, Y: -6, Z: 0}, Max: r3.Vec{X: 10, Y: -5, Z: 6}},
			{Min: r3.Vec{X: -10, Y: -1, Z: 0}, Max: r3.Vec{X: 10, Y: 0, Z: 6}},
			{Min: r3.Vec{X: -10, Y: 4, Z: 0}, Max: r3.Vec{X: 10, Y: 5, Z: 6}},
		},
		SpawnRegion: Box{
			Min: r3.Vec{X: -8, Y: 1, Z: 1},
			Max: r3.Vec{X: 8, Y: 3, Z: 4},
		},
	},
	"corridor": {
		Ground: true,
		Boxes: []Box{
			// Two long parallel walls 2m apart.
			{Min: r3.Vec{X: -20, Y: -1.2, Z: 0}, Max: r3.Vec{X: 20, Y: -1.0, Z: 2.6}},
			{Min: r3.Vec{X: -20, Y: 1.0, Z: 0}, Max: r3.Vec{X: 20, Y: 1.2, Z: 2.6}},
		},
		SpawnRegion: Box{
			Min: r3.Vec{X: -15, Y: -0.5, Z: 0.8},
			Max: r3.Vec{X: 15, Y: 0.5, Z: 1.8},
		},
	},
}
