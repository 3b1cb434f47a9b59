// Package scene provides static, deterministic scene geometry for
// ground-truth sensor computation: a catalog of fixed scene families,
// ray-castable box primitives, and the provider interface the
// environment consumes.
package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned box, Min ≤ Max componentwise.
type Box struct {
	Min r3.Vec
	Max r3.Vec
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Scene is a loaded, navigable scene handle: queryable static geometry
// plus the region in which the body may spawn. Immutable after Load.
type Scene struct {
	ID          string
	Seed        int64
	Ground      bool // infinite ground plane at z=0
	Boxes       []Box
	SpawnRegion Box
}

// CastRay returns the distance to the first geometry hit along dir from
// origin, if any within maxRange. dir must be unit length.
func (s *Scene) CastRay(origin, dir r3.Vec, maxRange float64) (float64, bool) {
	best := math.Inf(1)

	if s.Ground && dir.Z < 0 && origin.Z > 0 {
		if t := -origin.Z / dir.Z; t < best {
			best = t
		}
	}
	for _, b := range s.Boxes {
		if t, ok := rayBox(origin, dir, b); ok && t < best {
			best = t
		}
	}
	if best > maxRange || math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// rayBox is the slab-method ray/AABB intersection. Returns the entry
// distance (0 if origin inside), or false on miss.
func rayBox(origin, dir r3.Vec, b Box) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)

	for _, ax := range [3][3]float64{
		{origin.X, dir.X, 0}, {origin.Y, dir.Y, 1}, {origin.Z, dir.Z, 2},
	} {
		o, d := ax[0], ax[1]
		lo, hi := slabBounds(b, int(ax[2]))
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		tmin = 0
	}
	return tmin, true
}

func slabBounds(b Box, axis int) (float64, float64) {
	switch axis {
	case 0:
		return b.Min.X, b.Max.X
	case 1:
		return b.Min.Y, b.Max.Y
	default:
		return b.Min.Z, b.Max.Z
	}
}
