package game

// ZoneShape selects the membership test for a concealment zone.
type ZoneShape int

const (
	ZoneSphere ZoneShape = iota
	ZoneBox
)

// ConcealmentZone is a volumetric region granting a stealth bonus while a
// participant stands inside it. Zones are immutable after level load;
// membership is re-tested every tick.
type ConcealmentZone struct {
	Name   string
	Shape  ZoneShape
	Bonus  float64
	Center Vec3    // sphere
	Radius float64 // sphere
	Min    Vec3    // box
	Max    Vec3    // box
}

// SphereZone builds a spherical zone.
func SphereZone(name string, center Vec3, radius, bonus float64) ConcealmentZone {
	return ConcealmentZone{Name: name, Shape: ZoneSphere, Center: center, Radius: radius, Bonus: bonus}
}

// BoxZone builds a box zone.
func BoxZone(name string, min, max Vec3, bonus float64) ConcealmentZone {
	return ConcealmentZone{Name: name, Shape: ZoneBox, Min: min, Max: max, Bonus: bonus}
}

// Contains reports whether p lies inside the zone.
func (z ConcealmentZone) Contains(p Vec3) bool {
	switch z.Shape {
	case ZoneSphere:
		return Dist(p, z.Center) <= z.Radius
	case ZoneBox:
		return p.X >= z.Min.X && p.X <= z.Max.X &&
			p.Y >= z.Min.Y && p.Y <= z.Max.Y &&
			p.Z >= z.Min.Z && p.Z <= z.Max.Z
	default:
		return false
	}
}

// zoneBonus returns the maximum bonus among all zones containing p.
// Overlapping zones never stack.
func zoneBonus(zones []ConcealmentZone, p Vec3) float64 {
	best := 0.0
	for _, z := range zones {
		if z.Contains(p) && z.Bonus > best {
			best = z.Bonus
		}
	}
	return best
}
