package game

// Stealth model constants. The score is a 0–100 concealment metric that
// directly sets the pursuer's detection probability.
const (
	stealthMax = 100.0

	stealthBaseHidden  = 85.0 // inside a static hide spot
	stealthBaseExposed = 5.0

	stealthCrouchBonus = 15.0

	stealthSlowSpeedMin = 0.1 // horizontal speed band for the small penalty
	stealthSlowSpeedMax = 2.5
	stealthSlowPenalty  = 5.0
	stealthFastPenalty  = 15.0
)

// ComputeStealth derives a participant's stealth score from its
// current-frame flags and motion. Pure: no cross-tick state, no failure
// modes — missing concealment data simply reads as "not concealed".
//
// Base 85 when hidden, else 5; plus the best (never summed) bonus among
// occupied zones; +15 crouching; −5 moving slowly, −15 moving fast.
// Clamped to [0, 100].
func ComputeStealth(p *Participant, zones []ConcealmentZone) float64 {
	score := stealthBaseExposed
	if p.InHideSpot {
		score = stealthBaseHidden
	}

	score += zoneBonus(zones, p.Pos)

	if p.Crouching {
		score += stealthCrouchBonus
	}

	speed := p.Vel.HorizLen()
	switch {
	case speed > stealthSlowSpeedMax:
		score -= stealthFastPenalty
	case speed > stealthSlowSpeedMin:
		score -= stealthSlowPenalty
	}

	return clamp(score, 0, stealthMax)
}

// updateStealth recomputes every living participant's score in place. Runs
// first in the tick ordering, before perception reads the roster.
func updateStealth(participants []*Participant, zones []ConcealmentZone) {
	for _, p := range participants {
		if p == nil || !p.Alive {
			continue
		}
		p.StealthScore = ComputeStealth(p, zones)
	}
}
