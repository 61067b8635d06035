package game

import (
	"math"
	"math/rand"
)

// Perception tuning. Distances are world units, angles radians.
const (
	defaultViewDistance    = 20.0
	defaultViewHalfAngle   = 60.0 * math.Pi / 180.0
	defaultHearingDistance = 12.0
	defaultEyeHeight       = 1.6

	// Body-radius tolerance on the occlusion ray: a hit this close to the
	// target still counts as seeing the target, not a wall.
	bodyRadiusTolerance = 0.4

	// Point-blank override: at this stealth and range the probability gate
	// is skipped and only line of sight decides.
	pointBlankStealth  = 90.0
	pointBlankDistance = 3.0

	// Audibility.
	noiseRunning   = 1.0
	noiseMoving    = 0.5
	noiseSpeedEps  = 0.05
	noiseCrouchMul = 0.5
)

// PerceptionConfig holds the pursuer's sensing parameters.
type PerceptionConfig struct {
	ViewDistance    float64
	ViewHalfAngle   float64
	HearingDistance float64
	EyeHeight       float64
}

func DefaultPerceptionConfig() PerceptionConfig {
	return PerceptionConfig{
		ViewDistance:    defaultViewDistance,
		ViewHalfAngle:   defaultViewHalfAngle,
		HearingDistance: defaultHearingDistance,
		EyeHeight:       defaultEyeHeight,
	}
}

// Perception is one decision interval's detection result. Both sets hold
// living participants only and carry no state between intervals.
type Perception struct {
	Visible []*Participant
	Audible []*Participant
}

// Perceive evaluates visibility and audibility of every living participant
// from the given pose. Called once per decision interval, not per frame:
// the detection draw is a Bernoulli trial re-rolled per interval.
//
// Visibility short-circuits in order: point-blank override (high stealth at
// touching range goes straight to line of sight), view distance, the
// stealth-driven probability gate, the forward cone, then one occlusion ray
// from the eye point.
func Perceive(pos Vec3, facing float64, cfg PerceptionConfig, participants []*Participant, rc RayCaster, rng *rand.Rand) Perception {
	var out Perception
	forward := HeadingVec(facing)
	eye := pos.Add(Vec3{Y: cfg.EyeHeight})

	for _, p := range participants {
		if p == nil || !p.Alive {
			continue
		}
		dist := Dist(pos, p.Pos)

		if visibleOne(pos, eye, forward, cfg, p, dist, rc, rng) {
			out.Visible = append(out.Visible, p)
		}
		if audibleOne(cfg, p, dist) {
			out.Audible = append(out.Audible, p)
		}
	}
	return out
}

func visibleOne(pos, eye, forward Vec3, cfg PerceptionConfig, p *Participant, dist float64, rc RayCaster, rng *rand.Rand) bool {
	pointBlank := p.StealthScore >= pointBlankStealth && dist <= pointBlankDistance

	if !pointBlank {
		if dist > cfg.ViewDistance {
			return false
		}
		detectionChance := 1 - p.StealthScore/stealthMax
		if rng.Float64() >= detectionChance {
			return false
		}
		toTarget := p.Pos.Sub(pos)
		dir := Vec3{X: toTarget.X, Z: toTarget.Z}.Norm()
		if dir == (Vec3{}) {
			// Standing on top of the participant counts as ahead.
		} else if math.Acos(clamp(dir.Dot(forward), -1, 1)) > cfg.ViewHalfAngle {
			return false
		}
	}

	return hasEyeContact(eye, p, dist, rc)
}

// hasEyeContact casts one ray from the eye toward the participant's center
// and reports whether nothing occludes it. A hit within bodyRadiusTolerance
// of the target is the target itself.
func hasEyeContact(eye Vec3, p *Participant, dist float64, rc RayCaster) bool {
	center := p.Pos.Add(Vec3{Y: defaultEyeHeight * 0.5})
	hit := rc.RaycastClosest(eye, center)
	if !hit.Hit {
		return true
	}
	return hit.Distance >= dist-bodyRadiusTolerance
}

func audibleOne(cfg PerceptionConfig, p *Participant, dist float64) bool {
	noise := NoiseLevel(p)
	if noise <= 0 {
		return false
	}
	return dist < cfg.HearingDistance*noise
}

// NoiseLevel returns how loud a participant currently is: 1.0 running,
// 0.5 moving, 0 still; halved when crouching and damped by stealth.
func NoiseLevel(p *Participant) float64 {
	speed := p.Vel.HorizLen()
	var noise float64
	switch {
	case p.Running:
		noise = noiseRunning
	case speed > noiseSpeedEps:
		noise = noiseMoving
	default:
		return 0
	}
	if p.Crouching {
		noise *= noiseCrouchMul
	}
	noise *= 1 - 0.5*p.StealthScore/stealthMax
	return noise
}
