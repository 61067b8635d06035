package game

import "math"

// BodyKind distinguishes the terrain body from blocking scenery. The grid
// builder's obstacle-exclusion pass skips ground bodies so the floor never
// blocks its own cells.
type BodyKind int

const (
	BodyGround BodyKind = iota
	BodyObstacle
)

// StaticBody is an axis-aligned box registered with the physics collaborator.
type StaticBody struct {
	Name string
	Kind BodyKind
	Min  Vec3
	Max  Vec3
}

// Contains2D reports whether (x, z) lies within the body's horizontal bounds.
func (b StaticBody) Contains2D(x, z float64) bool {
	return x >= b.Min.X && x <= b.Max.X && z >= b.Min.Z && z <= b.Max.Z
}

// RayHit is the result of a closest-hit ray query.
type RayHit struct {
	Hit      bool
	Distance float64
	Point    Vec3
	Normal   Vec3
	Body     *StaticBody // nil for terrain hits
}

// RayCaster is the read-only ray interface this core consumes from physics.
// Queries are synchronous against the collaborator's current state.
type RayCaster interface {
	RaycastClosest(from, to Vec3) RayHit
}

// BodySource enumerates the static bodies used for walkability exclusion.
type BodySource interface {
	StaticBodies() []StaticBody
}

// StaticWorld is a minimal stand-in for the physics engine: a set of static
// AABB bodies plus an optional terrain heightfield. It satisfies RayCaster
// and BodySource and is what the harness, viewer and tests run against.
type StaticWorld struct {
	bodies  []StaticBody
	terrain *Heightfield
}

func NewStaticWorld() *StaticWorld {
	return &StaticWorld{}
}

// AddBody registers a static box. Bodies cannot be removed; level geometry
// is immutable once loaded.
func (w *StaticWorld) AddBody(b StaticBody) {
	w.bodies = append(w.bodies, b)
}

// SetTerrain installs the ground heightfield.
func (w *StaticWorld) SetTerrain(hf *Heightfield) {
	w.terrain = hf
}

func (w *StaticWorld) Terrain() *Heightfield {
	return w.terrain
}

// StaticBodies returns all registered boxes. The slice is shared; callers
// must not mutate it.
func (w *StaticWorld) StaticBodies() []StaticBody {
	return w.bodies
}

// RaycastClosest returns the nearest intersection of the segment from->to
// with any body or the terrain. Uses slab tests for boxes and a fixed-step
// march for the heightfield.
func (w *StaticWorld) RaycastClosest(from, to Vec3) RayHit {
	best := RayHit{Distance: math.Inf(1)}

	for i := range w.bodies {
		b := &w.bodies[i]
		t, normal, ok := segmentAABB(from, to, b.Min, b.Max)
		if !ok {
			continue
		}
		dist := to.Sub(from).Len() * t
		if dist < best.Distance {
			best = RayHit{
				Hit:      true,
				Distance: dist,
				Point:    from.Add(to.Sub(from).Scale(t)),
				Normal:   normal,
				Body:     b,
			}
		}
	}

	if w.terrain != nil {
		if p, ok := w.terrain.raymarch(from, to); ok {
			dist := p.Sub(from).Len()
			if dist < best.Distance {
				best = RayHit{
					Hit:      true,
					Distance: dist,
					Point:    p,
					Normal:   w.terrain.Normal(p.X, p.Z),
				}
			}
		}
	}

	if !best.Hit {
		return RayHit{}
	}
	return best
}

// segmentAABB returns the first segment parameter t in [0,1] where the line
// from->to enters the box, plus the entry face normal. ok is false when the
// segment misses the box entirely.
func segmentAABB(from, to, bmin, bmax Vec3) (t float64, normal Vec3, ok bool) {
	d := to.Sub(from)

	tMin := 0.0
	tMax := 1.0
	axis := -1  // slab that produced tMin
	sign := 1.0 // which face of that slab

	slab := func(o, dd, lo, hi float64, ax int) bool {
		if math.Abs(dd) < 1e-12 {
			return o >= lo && o <= hi
		}
		invD := 1.0 / dd
		t1 := (lo - o) * invD
		t2 := (hi - o) * invD
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}
		if t1 > tMin {
			tMin = t1
			axis = ax
			sign = s
		}
		if t2 < tMax {
			tMax = t2
		}
		return tMin <= tMax
	}

	if !slab(from.X, d.X, bmin.X, bmax.X, 0) {
		return 0, Vec3{}, false
	}
	if !slab(from.Y, d.Y, bmin.Y, bmax.Y, 1) {
		return 0, Vec3{}, false
	}
	if !slab(from.Z, d.Z, bmin.Z, bmax.Z, 2) {
		return 0, Vec3{}, false
	}
	if tMax < 0 || tMin > 1 {
		return 0, Vec3{}, false
	}

	t = tMin
	if t < 0 {
		t = 0
	}
	switch axis {
	case 0:
		normal = Vec3{X: sign}
	case 1:
		normal = Vec3{Y: sign}
	case 2:
		normal = Vec3{Z: sign}
	default:
		// Ray started inside the box.
		normal = Vec3{Y: 1}
	}
	return t, normal, true
}
