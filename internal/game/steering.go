package game

import "math"

// Local avoidance tuning. Steering is short-range and reactive; it runs
// every simulation tick regardless of the decision cadence.
const (
	feelerAngle     = 30.0 * math.Pi / 180.0
	feelerLookahead = 3.0
	feelerHeight    = 0.8 // feelers cast at chest height, above ground clutter

	nearBlockedDist = 0.8
	farBlockedDist  = 1.6
	nearSpeedScale  = 0.2
	farSpeedScale   = 0.5
)

// feelerSample is one forward probe: its angular offset from the desired
// direction and how far it travelled before hitting anything.
type feelerSample struct {
	offset float64
	dist   float64
	hit    bool
}

// steerDecision is the outcome of one steering evaluation.
type steerDecision struct {
	dir        Vec3
	speedScale float64
	feelers    [3]feelerSample
	bestIdx    int
}

// SteerDebug is the overlay/report view of the last steering decision.
type SteerDebug struct {
	Dir        Vec3
	SpeedScale float64
	Offsets    [3]float64
	Distances  [3]float64
	Hits       [3]bool
	ChosenIdx  int
}

func (d steerDecision) debug() SteerDebug {
	out := SteerDebug{Dir: d.dir, SpeedScale: d.speedScale, ChosenIdx: d.bestIdx}
	for i, f := range d.feelers {
		out.Offsets[i] = f.offset
		out.Distances[i] = f.dist
		out.Hits[i] = f.hit
	}
	return out
}

// steerAround probes three feeler rays around the desired direction and
// picks the one that travels farthest before an obstacle. The center feeler
// is evaluated first so ties keep it. When even the best feeler is blocked
// close by, speed is scaled down rather than stopping outright.
func steerAround(pos Vec3, desired Vec3, rc RayCaster) steerDecision {
	desired = Vec3{X: desired.X, Z: desired.Z}.Norm()
	if desired == (Vec3{}) {
		return steerDecision{speedScale: 1}
	}

	origin := pos.Add(Vec3{Y: feelerHeight})
	base := math.Atan2(desired.Z, desired.X)
	offsets := [3]float64{0, -feelerAngle, feelerAngle}

	var dec steerDecision
	bestDist := -1.0
	for i, off := range offsets {
		d := HeadingVec(base + off)
		hit := rc.RaycastClosest(origin, origin.Add(d.Scale(feelerLookahead)))
		sample := feelerSample{offset: off, dist: feelerLookahead}
		if hit.Hit {
			sample.dist = hit.Distance
			sample.hit = true
		}
		dec.feelers[i] = sample
		if sample.dist > bestDist {
			bestDist = sample.dist
			dec.bestIdx = i
			dec.dir = d
		}
	}

	switch {
	case bestDist < nearBlockedDist:
		dec.speedScale = nearSpeedScale
	case bestDist < farBlockedDist:
		dec.speedScale = farSpeedScale
	default:
		dec.speedScale = 1
	}
	return dec
}
