package game

import (
	"fmt"
	"math/rand"
)

// Cadence defaults. Steering and stuck detection run every simulation tick;
// perception and state transitions run on the coarser decision interval to
// bound ray-cast and sampling cost. Both are tick counters, not wall-clock
// comparisons, so cadence is configurable and deterministic in tests.
const (
	defaultTickRate      = 60
	defaultDecisionEvery = 60 // ticks between decision steps (~1 Hz)

	defaultCellSize = 1.0
	defaultMaxSlope = 45.0
)

// RoundPhase is the round collaborator's current phase. Only PhaseSeeking
// enables the controller; any other phase forces Idle.
type RoundPhase int

const (
	PhaseLobby RoundPhase = iota
	PhaseHiding
	PhaseSeeking
	PhaseOver
)

func (p RoundPhase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseHiding:
		return "hiding"
	case PhaseSeeking:
		return "seeking"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// Sim owns one loaded level: static world, walkability grid, roster, zones
// and the pursuer, advanced tick by tick on a single goroutine. The per-tick
// ordering discipline is fixed: stealth for all participants, then
// perception, then the pursuit controller.
type Sim struct {
	World  *StaticWorld
	Grid   *WalkGrid
	Roster *Roster
	Zones  []ConcealmentZone

	Pursuer *Pursuer
	Phase   RoundPhase

	SimLog   *SimLog
	Reporter *SimReporter

	bounds        GridBounds
	cellSize      float64
	maxSlopeDeg   float64
	tickRate      int
	decisionEvery int

	tick      int
	rng       *rand.Rand
	onCapture func(CaptureEvent)

	pursuerStart Vec3
	pursuerCfg   PursuerConfig
	patrolRoute  []Vec3

	prevState PursuerState
	prevStuck int
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // bounds, geometry, seed, cadence — applied first
	simOptActor                      // participants, zones, pursuer — applied after the grid is built
)

// SimOption is a builder function applied to a Sim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*Sim)
}

// WithBounds sets the world region the walkability grid covers.
func WithBounds(min, max Vec3) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		s.bounds = GridBounds{Min: min, Max: max}
	}}
}

// WithFlatGround installs a flat terrain heightfield at height y across the
// current bounds.
func WithFlatGround(y float64) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		cols := int((s.bounds.Max.X-s.bounds.Min.X)/2) + 2
		rows := int((s.bounds.Max.Z-s.bounds.Min.Z)/2) + 2
		s.World.SetTerrain(NewFlatHeightfield(s.bounds.Min.X, s.bounds.Min.Z, 2, cols, rows, y))
	}}
}

// WithTerrain installs a custom heightfield.
func WithTerrain(hf *Heightfield) SimOption {
	return SimOption{simOptInfra, func(s *Sim) { s.World.SetTerrain(hf) }}
}

// WithObstacle adds a static blocking box.
func WithObstacle(name string, min, max Vec3) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		s.World.AddBody(StaticBody{Name: name, Kind: BodyObstacle, Min: min, Max: max})
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation, not crypto
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(s *Sim) { s.SimLog = NewSimLog(v) }}
}

// WithCellSize overrides the grid cell size.
func WithCellSize(size float64) SimOption {
	return SimOption{simOptInfra, func(s *Sim) { s.cellSize = size }}
}

// WithMaxSlope overrides the walkable slope limit in degrees.
func WithMaxSlope(deg float64) SimOption {
	return SimOption{simOptInfra, func(s *Sim) { s.maxSlopeDeg = deg }}
}

// WithDecisionInterval sets how many simulation ticks pass between decision
// steps.
func WithDecisionInterval(ticks int) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		if ticks > 0 {
			s.decisionEvery = ticks
		}
	}}
}

// WithTickRate sets the simulation rate in ticks per second.
func WithTickRate(rate int) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		if rate > 0 {
			s.tickRate = rate
		}
	}}
}

// WithParticipant adds a stationary participant.
func WithParticipant(id string, pos Vec3) SimOption {
	return SimOption{simOptActor, func(s *Sim) {
		s.Roster.Add(&Participant{ID: id, Pos: pos, Health: 100, Alive: true})
	}}
}

// WithHiddenParticipant adds a stationary participant flagged as inside a
// static hide spot.
func WithHiddenParticipant(id string, pos Vec3) SimOption {
	return SimOption{simOptActor, func(s *Sim) {
		s.Roster.Add(&Participant{ID: id, Pos: pos, Health: 100, Alive: true, InHideSpot: true})
	}}
}

// WithScriptedParticipant adds a participant walking a cyclic waypoint loop,
// standing in for live player input.
func WithScriptedParticipant(id string, speed float64, running bool, waypoints ...Vec3) SimOption {
	return SimOption{simOptActor, func(s *Sim) {
		start := Vec3{}
		if len(waypoints) > 0 {
			start = waypoints[0]
		}
		s.Roster.Add(&Participant{
			ID: id, Pos: start, Health: 100, Alive: true, Running: running,
			script: &moveScript{waypoints: waypoints, speed: speed},
		})
	}}
}

// WithZone adds a dynamic concealment zone.
func WithZone(z ConcealmentZone) SimOption {
	return SimOption{simOptActor, func(s *Sim) { s.Zones = append(s.Zones, z) }}
}

// WithPursuer places the pursuer and sets its tuning.
func WithPursuer(pos Vec3, cfg PursuerConfig) SimOption {
	return SimOption{simOptActor, func(s *Sim) {
		s.pursuerStart = pos
		s.pursuerCfg = cfg
	}}
}

// WithPatrolRoute sets the pursuer's cyclic waypoints. Without it a default
// route is derived from the walkable corners of the grid.
func WithPatrolRoute(points ...Vec3) SimOption {
	return SimOption{simOptActor, func(s *Sim) { s.patrolRoute = points }}
}

// WithCaptureSink registers the networking collaborator's capture callback.
func WithCaptureSink(fn func(CaptureEvent)) SimOption {
	return SimOption{simOptActor, func(s *Sim) { s.onCapture = fn }}
}

// NewSim constructs a simulation in ordered passes:
//  1. Infrastructure (bounds, geometry, seed, cadence)
//  2. Walkability grid build
//  3. Actors (participants, zones, pursuer)
func NewSim(opts ...SimOption) *Sim {
	s := &Sim{
		World:         NewStaticWorld(),
		Roster:        NewRoster(),
		SimLog:        NewSimLog(false),
		bounds:        GridBounds{Min: Vec3{X: 0, Y: -1, Z: 0}, Max: Vec3{X: 40, Y: 10, Z: 24}},
		cellSize:      defaultCellSize,
		maxSlopeDeg:   defaultMaxSlope,
		tickRate:      defaultTickRate,
		decisionEvery: defaultDecisionEvery,
		rng:           rand.New(rand.NewSource(1)), // #nosec G404 -- deterministic default
		Phase:         PhaseSeeking,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(s)
		}
	}
	if s.World.Terrain() == nil && !hasGroundBody(s.World) {
		WithFlatGround(0).fn(s)
	}
	s.Grid = BuildWalkGrid(s.bounds, s.cellSize, s.maxSlopeDeg, s.World, s.World)

	for _, o := range opts {
		if o.kind == simOptActor {
			o.fn(s)
		}
	}

	if s.pursuerStart == (Vec3{}) {
		s.pursuerStart = s.bounds.Min.Add(s.bounds.Max).Scale(0.5)
		s.pursuerStart.Y = 0
	}
	s.Pursuer = NewPursuer(s.snapToGround(s.pursuerStart), s.pursuerCfg)
	if s.patrolRoute == nil {
		s.patrolRoute = derivePatrolRoute(s.Grid)
	}
	s.Pursuer.SetPatrolRoute(s.patrolRoute)
	s.prevState = s.Pursuer.State

	s.Reporter = NewSimReporter(reportWindowTicks)
	return s
}

func hasGroundBody(w *StaticWorld) bool {
	for _, b := range w.StaticBodies() {
		if b.Kind == BodyGround {
			return true
		}
	}
	return false
}

// derivePatrolRoute picks the walkable cell nearest each inset corner of the
// grid, giving a serviceable default loop for levels without an authored
// route.
func derivePatrolRoute(g *WalkGrid) []Vec3 {
	if g == nil {
		return nil
	}
	insetC := g.Cols() / 5
	insetR := g.Rows() / 5
	corners := [4][2]int{
		{insetC, insetR},
		{g.Cols() - 1 - insetC, insetR},
		{g.Cols() - 1 - insetC, g.Rows() - 1 - insetR},
		{insetC, g.Rows() - 1 - insetR},
	}
	var route []Vec3
	for _, c := range corners {
		if cell := nearestWalkable(g, c[0], c[1]); cell != nil {
			route = append(route, cell.World)
		}
	}
	if len(route) < 2 {
		return nil
	}
	return route
}

// nearestWalkable spirals outward from (col, row) to the first walkable cell.
func nearestWalkable(g *WalkGrid, col, row int) *GridCell {
	maxR := g.Cols()
	if g.Rows() > maxR {
		maxR = g.Rows()
	}
	for r := 0; r <= maxR; r++ {
		for dr := -r; dr <= r; dr++ {
			for dc := -r; dc <= r; dc++ {
				if absInt(dr) != r && absInt(dc) != r {
					continue
				}
				if c := g.CellAt(col+dc, row+dr); c != nil && c.Walkable {
					return c
				}
			}
		}
	}
	return nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// CurrentTick returns the tick counter.
func (s *Sim) CurrentTick() int { return s.tick }

// TickRate returns the configured simulation rate.
func (s *Sim) TickRate() int { return s.tickRate }

// PursuerPose returns the pursuer's world position and facing angle, valid
// as of the latest completed tick. This is what rendering and networking
// sample.
func (s *Sim) PursuerPose() (Vec3, float64) {
	return s.Pursuer.Pos, s.Pursuer.Facing
}

// SetPhase applies the round collaborator's phase. Leaving the seeking phase
// immediately forces the controller Idle.
func (s *Sim) SetPhase(p RoundPhase) {
	if s.Phase == p {
		return
	}
	s.Phase = p
	s.SimLog.Add(s.tick, "--", "phase", "change", p.String(), 0)
	if p != PhaseSeeking {
		s.Pursuer.ForceIdle()
		s.prevState = s.Pursuer.State
	}
}

// Reset is the round collaborator's between-rounds signal: pursuer state
// clears, participants heal, the grid and zones stay (level unchanged).
func (s *Sim) Reset() {
	s.Pursuer.Reset(s.snapToGround(s.pursuerStart))
	s.Pursuer.SetPatrolRoute(s.patrolRoute)
	s.prevState = s.Pursuer.State
	s.prevStuck = 0
	for _, p := range s.Roster.Participants() {
		p.Health = 100
		p.Alive = true
		p.StealthScore = 0
	}
	s.SimLog.Add(s.tick, "--", "phase", "reset", "round reset", 0)
}

// Step advances exactly one simulation tick. Ordering within the tick is
// fixed: participant movement, stealth model, then (on decision ticks)
// perception and the transition rule, then the controller's locomotion.
func (s *Sim) Step() {
	s.tick++
	dt := 1.0 / float64(s.tickRate)

	for _, p := range s.Roster.Participants() {
		p.advance(dt)
		if s.Grid != nil && p.Alive {
			p.Pos = s.snapToGround(p.Pos)
		}
	}

	if s.Phase != PhaseSeeking {
		return
	}

	updateStealth(s.Roster.Participants(), s.Zones)
	if s.SimLog.Verbose() {
		for _, p := range s.Roster.Participants() {
			if p.Alive {
				s.SimLog.AddVerbose(s.tick, p.ID, "stealth", "score", fmt.Sprintf("%.0f", p.StealthScore), p.StealthScore)
			}
		}
	}

	if s.tick%s.decisionEvery == 0 {
		s.decisionStep()
	}

	ev, caught := s.Pursuer.Update(dt, s.World, s.Grid, s.Roster, s.rng)
	s.Pursuer.Pos = s.snapToGround(s.Pursuer.Pos)
	if n := s.Pursuer.StuckRecoveries(); n != s.prevStuck {
		s.SimLog.Add(s.tick, "P", "stuck", "recover", "heading perturbed", float64(n))
		s.prevStuck = n
	}
	if caught {
		s.SimLog.Add(s.tick, ev.TargetID, "capture", "caught",
			fmt.Sprintf("at (%.1f,%.1f)", ev.Position.X, ev.Position.Z), 0)
		if s.onCapture != nil {
			s.onCapture(ev)
		}
	}

	s.logStateChange()
	s.SimLog.AddVerbose(s.tick, "P", "move", "position",
		fmt.Sprintf("(%.2f,%.2f)", s.Pursuer.Pos.X, s.Pursuer.Pos.Z), 0)

	if s.Reporter != nil {
		s.Reporter.Observe(s)
	}
}

// decisionStep runs perception and the FSM transition, logging detections
// and transitions as they happen.
func (s *Sim) decisionStep() {
	perc := Perceive(s.Pursuer.Pos, s.Pursuer.Facing, s.Pursuer.cfg.Perception,
		s.Roster.Participants(), s.World, s.rng)

	for _, p := range perc.Visible {
		s.SimLog.Add(s.tick, p.ID, "percept", "visible",
			fmt.Sprintf("stealth=%.0f", p.StealthScore), p.StealthScore)
	}
	for _, p := range perc.Audible {
		s.SimLog.Add(s.tick, p.ID, "percept", "audible",
			fmt.Sprintf("noise=%.2f", NoiseLevel(p)), NoiseLevel(p))
	}

	s.Pursuer.Decide(perc)
	s.logStateChange()
}

func (s *Sim) logStateChange() {
	if s.Pursuer.State != s.prevState {
		s.SimLog.Add(s.tick, "P", "state", "change",
			fmt.Sprintf("%s → %s", s.prevState, s.Pursuer.State), 0)
		s.prevState = s.Pursuer.State
	}
}

// snapToGround drops a position onto the terrain surface when one exists.
func (s *Sim) snapToGround(p Vec3) Vec3 {
	if hf := s.World.Terrain(); hf != nil {
		p.Y = hf.Sample(p.X, p.Z)
	}
	return p
}

// RunTicks advances the simulation n ticks.
func (s *Sim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// RunUntil advances up to maxTicks, stopping early when predicate returns
// true. Returns the tick it was satisfied at, or -1.
func (s *Sim) RunUntil(predicate func(*Sim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		s.Step()
		if predicate(s) {
			return s.tick
		}
	}
	return -1
}
