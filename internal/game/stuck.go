package game

// Stuck detection tuning. Displacement is sampled at a coarse fixed
// interval; two consecutive near-zero samples mean the pursuer is wedged.
const (
	stuckSampleInterval = 2.0 // seconds between displacement samples
	stuckEpsilon        = 0.25
	stuckTriggerCount   = 2
)

// stuckDetector watches displacement between samples. It never fires on a
// single low sample — momentary pauses (capture, sharp turns) are normal.
type stuckDetector struct {
	elapsed  float64
	lastPos  Vec3
	primed   bool
	lowCount int
}

func newStuckDetector() stuckDetector {
	return stuckDetector{}
}

// update accumulates time and, at each sample boundary, compares position
// against the previous sample. Returns true when recovery should trigger;
// the counter resets so the next trigger needs two fresh low samples.
func (d *stuckDetector) update(dt float64, pos Vec3) bool {
	if !d.primed {
		d.lastPos = pos
		d.primed = true
		return false
	}

	d.elapsed += dt
	if d.elapsed < stuckSampleInterval {
		return false
	}
	d.elapsed -= stuckSampleInterval

	moved := HorizDist(pos, d.lastPos)
	d.lastPos = pos

	if moved >= stuckEpsilon {
		d.lowCount = 0
		return false
	}

	d.lowCount++
	if d.lowCount >= stuckTriggerCount {
		d.lowCount = 0
		return true
	}
	return false
}
