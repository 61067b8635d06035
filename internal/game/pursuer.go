package game

import (
	"math"
	"math/rand"
)

// Pursuit controller tuning.
const (
	defaultPatrolSpeed = 2.0 // units per second
	defaultSearchSpeed = 2.6
	defaultRunSpeed    = 4.5

	captureRadius = 1.5
	captureDamage = 100.0
	arrivalRadius = 2.0

	defaultSearchDuration = 10.0 // seconds without re-acquisition
	defaultSearchRadius   = 4.0
	searchSweepRate       = 1.2 // radians per second around the last known position

	idleSweepArc  = 0.9 // radians either side of the idle anchor
	idleSweepRate = 0.7

	// Heading override applied after a stuck recovery fires.
	recoverDuration = 0.8 // seconds

	minMoveEps = 1e-3
)

// PursuerState is the controller's finite-state machine state.
type PursuerState int

const (
	StateIdle PursuerState = iota
	StatePatrolling
	StateChasing
	StateSearching
)

func (s PursuerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePatrolling:
		return "patrolling"
	case StateChasing:
		return "chasing"
	case StateSearching:
		return "searching"
	default:
		return "unknown"
	}
}

// NavigationMode selects how the controller travels in Patrolling and
// Searching: purely reactive steering, or A* waypoints over the walkability
// grid feeding the same steering layer. Chasing is always reactive — it
// tracks a live position.
type NavigationMode int

const (
	NavReactive NavigationMode = iota
	NavPlanned
)

// PursuerConfig bundles the controller's tunables. Zero values fall back to
// the package defaults in ApplyDefaults.
type PursuerConfig struct {
	PatrolSpeed    float64
	SearchSpeed    float64
	RunSpeed       float64
	SearchDuration float64
	SearchRadius   float64
	NavMode        NavigationMode
	Perception     PerceptionConfig
}

func (c *PursuerConfig) ApplyDefaults() {
	if c.PatrolSpeed == 0 {
		c.PatrolSpeed = defaultPatrolSpeed
	}
	if c.SearchSpeed == 0 {
		c.SearchSpeed = defaultSearchSpeed
	}
	if c.RunSpeed == 0 {
		c.RunSpeed = defaultRunSpeed
	}
	if c.SearchDuration == 0 {
		c.SearchDuration = defaultSearchDuration
	}
	if c.SearchRadius == 0 {
		c.SearchRadius = defaultSearchRadius
	}
	if c.Perception == (PerceptionConfig{}) {
		c.Perception = DefaultPerceptionConfig()
	}
}

// CaptureEvent is raised exactly once per successful catch and handed to the
// networking collaborator.
type CaptureEvent struct {
	TargetID string
	Position Vec3
}

// Pursuer is the autonomous antagonist. Single-writer: only the controller
// mutates it, and state transitions happen only inside Decide.
type Pursuer struct {
	Pos    Vec3
	Facing float64
	Vel    Vec3

	State              PursuerState
	Target             *Participant
	LastKnownTargetPos Vec3

	cfg PursuerConfig

	patrol      []Vec3
	patrolIndex int

	searchElapsed float64
	searchSweep   float64

	idleAnchor float64
	idlePhase  float64

	stuck           stuckDetector
	recoverLeft     float64
	recoverHeading  float64
	stuckRecoveries int

	path      []Vec3
	pathIndex int
	pathGoal  Vec3

	lastSteer steerDecision // retained for overlays and the debug report
}

// NewPursuer creates a pursuer at the given position, starting Idle.
func NewPursuer(pos Vec3, cfg PursuerConfig) *Pursuer {
	cfg.ApplyDefaults()
	return &Pursuer{
		Pos:   pos,
		State: StateIdle,
		cfg:   cfg,
		stuck: newStuckDetector(),
	}
}

func (pu *Pursuer) Config() PursuerConfig { return pu.cfg }

// SetPatrolRoute installs the cyclic waypoint list for Patrolling.
func (pu *Pursuer) SetPatrolRoute(route []Vec3) {
	pu.patrol = route
	pu.patrolIndex = 0
}

func (pu *Pursuer) PatrolRoute() []Vec3 { return pu.patrol }

// Reset returns the controller to its initial state. Driven by the round
// collaborator between rounds; nothing else clears pursuer state.
func (pu *Pursuer) Reset(pos Vec3) {
	pu.Pos = pos
	pu.Vel = Vec3{}
	pu.setState(StateIdle)
	pu.Target = nil
	pu.patrolIndex = 0
	pu.stuck = newStuckDetector()
	pu.recoverLeft = 0
	pu.stuckRecoveries = 0
	pu.clearPath()
}

// setState switches states, resetting per-state timers on entry.
func (pu *Pursuer) setState(s PursuerState) {
	if pu.State == s {
		return
	}
	pu.State = s
	switch s {
	case StateIdle:
		pu.idleAnchor = pu.Facing
		pu.idlePhase = 0
	case StateSearching:
		pu.searchElapsed = 0
		pu.searchSweep = 0
	}
	pu.clearPath()
}

// Decide applies the transition rule to one decision interval's perception.
// Visible participants win over audible; otherwise only Searching expiry
// changes state — everything else is sticky. An invalidated chase target
// falls back to Patrolling rather than faulting.
func (pu *Pursuer) Decide(perc Perception) {
	if v := closestTo(pu.Pos, perc.Visible); v != nil {
		pu.Target = v
		pu.LastKnownTargetPos = v.Pos
		pu.setState(StateChasing)
		return
	}

	if a := closestTo(pu.Pos, perc.Audible); a != nil {
		pu.Target = nil
		pu.LastKnownTargetPos = a.Pos
		// Re-entering Searching on a fresh sound restarts the sweep.
		pu.searchElapsed = 0
		pu.searchSweep = 0
		pu.setState(StateSearching)
		return
	}

	switch pu.State {
	case StateSearching:
		if pu.searchElapsed >= pu.cfg.SearchDuration {
			pu.Target = nil
			pu.setState(StatePatrolling)
		}
	case StateChasing:
		if pu.Target == nil || !pu.Target.Alive {
			pu.Target = nil
			pu.setState(StatePatrolling)
		}
	case StateIdle:
		// An idle pursuer with a patrol route starts walking it once the
		// first uneventful decision passes.
		if len(pu.patrol) > 0 {
			pu.setState(StatePatrolling)
		}
	}
}

// ForceIdle drops target and state, used when the round phase is not an
// active seeking phase.
func (pu *Pursuer) ForceIdle() {
	pu.Target = nil
	pu.setState(StateIdle)
}

// closestTo picks the nearest participant; ties keep the earlier entry so
// selection is stable across intervals.
func closestTo(pos Vec3, list []*Participant) *Participant {
	var best *Participant
	bestDist := math.Inf(1)
	for _, p := range list {
		if p == nil || !p.Alive {
			continue
		}
		d := Dist(pos, p.Pos)
		if d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best
}

// Update advances locomotion one simulation tick: goal selection for the
// current state, feeler steering, movement, facing, capture resolution and
// stuck recovery. Runs at full simulation rate, independent of the decision
// cadence. Returns a capture event when this tick resolved one.
func (pu *Pursuer) Update(dt float64, rc RayCaster, grid *WalkGrid, dir ParticipantSource, rng *rand.Rand) (CaptureEvent, bool) {
	var (
		desired  Vec3
		speed    float64
		captured CaptureEvent
		didCatch bool
	)

	switch pu.State {
	case StateIdle:
		pu.idlePhase += dt
		pu.Facing = normalizeAngle(pu.idleAnchor + idleSweepArc*math.Sin(pu.idlePhase*idleSweepRate*2*math.Pi))
		pu.Vel = Vec3{}
		return CaptureEvent{}, false

	case StatePatrolling:
		goal, ok := pu.patrolGoal()
		if !ok {
			pu.Vel = Vec3{}
			return CaptureEvent{}, false
		}
		desired = pu.travelDir(goal, grid)
		speed = pu.cfg.PatrolSpeed

	case StateChasing:
		if pu.Target == nil || !pu.Target.Alive {
			pu.Vel = Vec3{}
			return CaptureEvent{}, false
		}
		pu.LastKnownTargetPos = pu.Target.Pos
		if Dist(pu.Pos, pu.Target.Pos) < captureRadius {
			captured = pu.resolveCapture(dir)
			didCatch = true
			pu.Vel = Vec3{}
			return captured, didCatch
		}
		desired = flatDir(pu.Pos, pu.Target.Pos)
		speed = pu.cfg.RunSpeed

	case StateSearching:
		pu.searchElapsed += dt
		pu.searchSweep += searchSweepRate * dt
		sweep := pu.LastKnownTargetPos.Add(Vec3{
			X: pu.cfg.SearchRadius * math.Cos(pu.searchSweep),
			Z: pu.cfg.SearchRadius * math.Sin(pu.searchSweep),
		})
		if pu.cfg.NavMode == NavPlanned && HorizDist(pu.Pos, pu.LastKnownTargetPos) > pu.cfg.SearchRadius*1.5 {
			desired = pu.travelDir(pu.LastKnownTargetPos, grid)
		} else {
			desired = flatDir(pu.Pos, sweep)
		}
		speed = pu.cfg.SearchSpeed
	}

	// Stuck recovery overrides the desired heading for a short burst.
	if pu.recoverLeft > 0 {
		pu.recoverLeft -= dt
		desired = HeadingVec(pu.recoverHeading)
	}

	pu.lastSteer = steerAround(pu.Pos, desired, rc)
	move := pu.lastSteer.dir.Scale(speed * pu.lastSteer.speedScale)
	pu.Vel = move
	pu.Pos = pu.Pos.Add(move.Scale(dt))

	if move.HorizLen() > minMoveEps {
		pu.Facing = math.Atan2(move.Z, move.X)
	}

	if pu.stuck.update(dt, pu.Pos) {
		pu.recoverHeading = rng.Float64()*2*math.Pi - math.Pi
		pu.recoverLeft = recoverDuration
		pu.stuckRecoveries++
		pu.clearPath()
	}

	return captured, didCatch
}

// resolveCapture defeats the target through the participant collaborator and
// clears it; selection reverts to the decision step on the next interval.
func (pu *Pursuer) resolveCapture(dir ParticipantSource) CaptureEvent {
	ev := CaptureEvent{TargetID: pu.Target.ID, Position: pu.Target.Pos}
	dir.Damage(pu.Target.ID, captureDamage)
	pu.Target = nil
	return ev
}

// patrolGoal returns the current patrol waypoint, cycling on arrival.
func (pu *Pursuer) patrolGoal() (Vec3, bool) {
	if len(pu.patrol) == 0 {
		return Vec3{}, false
	}
	goal := pu.patrol[pu.patrolIndex]
	if HorizDist(pu.Pos, goal) < arrivalRadius {
		pu.patrolIndex = (pu.patrolIndex + 1) % len(pu.patrol)
		goal = pu.patrol[pu.patrolIndex]
		pu.clearPath()
	}
	return goal, true
}

// travelDir yields the desired direction toward goal: straight-line in
// reactive mode, via A* waypoints in planned mode. Planned waypoints feed
// the same steering layer, they never bypass it.
func (pu *Pursuer) travelDir(goal Vec3, grid *WalkGrid) Vec3 {
	if pu.cfg.NavMode != NavPlanned || grid == nil {
		return flatDir(pu.Pos, goal)
	}

	if pu.path == nil || HorizDist(pu.pathGoal, goal) > arrivalRadius {
		pu.path = grid.FindPath(pu.Pos, goal)
		pu.pathIndex = 0
		pu.pathGoal = goal
		if pu.path == nil {
			// No plan available; degrade to reactive travel.
			return flatDir(pu.Pos, goal)
		}
	}

	for pu.pathIndex < len(pu.path) && HorizDist(pu.Pos, pu.path[pu.pathIndex]) < grid.CellSize()*0.6 {
		pu.pathIndex++
	}
	if pu.pathIndex >= len(pu.path) {
		return flatDir(pu.Pos, goal)
	}
	return flatDir(pu.Pos, pu.path[pu.pathIndex])
}

func (pu *Pursuer) clearPath() {
	pu.path = nil
	pu.pathIndex = 0
}

// CurrentPath returns the active planned path, nil in reactive travel.
func (pu *Pursuer) CurrentPath() []Vec3 { return pu.path }

// StuckRecoveries returns how many times recovery has fired since the last
// reset.
func (pu *Pursuer) StuckRecoveries() int { return pu.stuckRecoveries }

// LastSteer exposes the most recent steering decision for overlays.
func (pu *Pursuer) LastSteer() SteerDebug { return pu.lastSteer.debug() }

// flatDir is the unit XZ direction from a to b.
func flatDir(a, b Vec3) Vec3 {
	d := b.Sub(a)
	return Vec3{X: d.X, Z: d.Z}.Norm()
}
