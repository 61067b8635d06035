package game

import (
	"strings"
	"testing"
)

// dumpRun prints the run log and summary so `go test -v` shows the full
// scenario trace on failure investigation.
func dumpRun(t *testing.T, s *Sim) {
	t.Helper()
	t.Log(s.SimLog.Format())
	t.Log(s.SimLog.Summary(s.CurrentTick(), s.Pursuer, s.Roster.Participants()))
}

// --- Scenario: exposed runner gets chased and caught ---

func TestScenario_ChaseAndCapture(t *testing.T) {
	var sinkEvents []CaptureEvent
	s := NewSim(
		WithBounds(Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 20, Y: 6, Z: 20}),
		WithSeed(7),
		WithDecisionInterval(10),
		// Running above the speed penalty band pins stealth at zero, so the
		// detection draw always passes once the runner is in the cone.
		WithScriptedParticipant("r1", 3.0, true, Vec3{X: 10, Z: 10}, Vec3{X: 14, Z: 10}),
		WithPursuer(Vec3{X: 4, Z: 10}, PursuerConfig{}),
		WithCaptureSink(func(ev CaptureEvent) { sinkEvents = append(sinkEvents, ev) }),
	)

	caughtAt := s.RunUntil(func(s *Sim) bool {
		return !s.Roster.Find("r1").Alive
	}, 3600)
	if caughtAt < 0 {
		dumpRun(t, s)
		t.Fatal("runner was never caught")
	}

	if len(sinkEvents) != 1 {
		t.Fatalf("capture sink should fire exactly once, got %d", len(sinkEvents))
	}
	if sinkEvents[0].TargetID != "r1" {
		t.Fatalf("capture event names wrong participant: %q", sinkEvents[0].TargetID)
	}
	if got := s.SimLog.CountCategory("capture", "caught"); got != 1 {
		t.Fatalf("expected one capture log entry, got %d", got)
	}
	if s.Pursuer.Target != nil {
		t.Fatal("capture must clear the chase target")
	}
	if !s.SimLog.HasEntry("state", "change", "chasing") {
		t.Fatal("log should record the transition into chasing")
	}
}

// --- Scenario: perfectly hidden participant is never detected ---

func TestScenario_HiddenParticipantStaysHidden(t *testing.T) {
	s := NewSim(
		WithBounds(Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 20, Y: 6, Z: 20}),
		WithSeed(3),
		WithDecisionInterval(10),
		// Center of the level, well clear of the default patrol legs so the
		// point-blank stealth override never comes into play.
		WithHiddenParticipant("h1", Vec3{X: 10, Z: 10}),
		WithPursuer(Vec3{X: 5, Z: 5}, PursuerConfig{}),
	)
	// Hidden plus crouching reaches the stealth cap, which zeroes the
	// detection chance outright.
	s.Roster.Find("h1").Crouching = true

	s.RunTicks(1800)

	if got := s.SimLog.CountCategory("percept", "visible"); got != 0 {
		dumpRun(t, s)
		t.Fatalf("capped stealth must never be seen, got %d detections", got)
	}
	if got := s.SimLog.CountCategory("percept", "audible"); got != 0 {
		t.Fatalf("a stationary participant must never be heard, got %d", got)
	}
	if s.SimLog.HasEntry("state", "change", "chasing") {
		t.Fatal("pursuer must never enter chasing")
	}
	if !s.Roster.Find("h1").Alive {
		t.Fatal("hidden participant must survive the round")
	}
	if s.Roster.Find("h1").StealthScore != stealthMax {
		t.Fatalf("expected capped stealth, got %.0f", s.Roster.Find("h1").StealthScore)
	}
}

// --- Scenario: a noise behind the pursuer starts a search ---

func TestScenario_NoiseBehindStartsSearch(t *testing.T) {
	s := NewSim(
		WithBounds(Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 20, Y: 6, Z: 20}),
		WithSeed(5),
		WithDecisionInterval(10),
		// The runner sits directly behind the pursuer. The idle look-around
		// sweeps facing by up to 0.9 rad either side, which together with the
		// 60 degree half-angle cone covers about 112 degrees off the initial
		// facing; at 180 degrees the runner stays out of sight through any
		// swept facing while remaining inside hearing range.
		WithScriptedParticipant("r1", 3.0, true, Vec3{X: 4, Z: 10}, Vec3{X: 2, Z: 10}),
		WithPursuer(Vec3{X: 10, Z: 10}, PursuerConfig{}),
	)

	s.RunTicks(10) // exactly one decision interval

	if s.SimLog.CountCategory("percept", "audible") == 0 {
		dumpRun(t, s)
		t.Fatal("running participant in hearing range should be audible")
	}
	if got := s.SimLog.CountCategory("percept", "visible"); got != 0 {
		dumpRun(t, s)
		t.Fatalf("runner behind the pursuer must stay unseen, got %d detections", got)
	}
	if s.Pursuer.State != StateSearching {
		t.Fatalf("noise without sight should start a search, got %s", s.Pursuer.State)
	}
	if s.Pursuer.Target != nil {
		t.Fatal("searching must not hold a target reference")
	}
	lk := s.Pursuer.LastKnownTargetPos
	if lk.X > 6 {
		t.Fatalf("last known position should be near the noise, got %+v", lk)
	}
}

// --- Scenario: the round phase gates the whole controller ---

func TestScenario_PhaseGatesController(t *testing.T) {
	s := NewSim(
		WithBounds(Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 20, Y: 6, Z: 20}),
		WithSeed(11),
		WithDecisionInterval(10),
		WithScriptedParticipant("r1", 3.0, true, Vec3{X: 10, Z: 10}, Vec3{X: 14, Z: 10}),
		WithPursuer(Vec3{X: 4, Z: 10}, PursuerConfig{}),
	)

	s.SetPhase(PhaseHiding)
	start, _ := s.PursuerPose()
	s.RunTicks(600)

	if pos, _ := s.PursuerPose(); pos != start {
		t.Fatal("pursuer must not move outside the seeking phase")
	}
	if s.Pursuer.State != StateIdle {
		t.Fatalf("non-seeking phase forces idle, got %s", s.Pursuer.State)
	}
	if got := s.SimLog.CountCategory("percept", "visible"); got != 0 {
		t.Fatalf("no perception outside the seeking phase, got %d", got)
	}

	// Entering the seeking phase brings the controller back to life.
	s.SetPhase(PhaseSeeking)
	caughtAt := s.RunUntil(func(s *Sim) bool {
		return !s.Roster.Find("r1").Alive
	}, 3600)
	if caughtAt < 0 {
		dumpRun(t, s)
		t.Fatal("runner should be caught once seeking starts")
	}
}

// --- Scenario: between-rounds reset restores everyone ---

func TestScenario_ResetRestoresRound(t *testing.T) {
	s := NewSim(
		WithBounds(Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 20, Y: 6, Z: 20}),
		WithSeed(7),
		WithDecisionInterval(10),
		WithScriptedParticipant("r1", 3.0, true, Vec3{X: 10, Z: 10}, Vec3{X: 14, Z: 10}),
		WithPursuer(Vec3{X: 4, Z: 10}, PursuerConfig{}),
	)

	if s.RunUntil(func(s *Sim) bool { return !s.Roster.Find("r1").Alive }, 3600) < 0 {
		t.Fatal("setup failed: runner never caught")
	}

	s.Reset()

	r := s.Roster.Find("r1")
	if !r.Alive || r.Health != 100 {
		t.Fatal("reset must revive and heal participants")
	}
	if s.Pursuer.State != StateIdle || s.Pursuer.Target != nil {
		t.Fatal("reset must return the pursuer to idle with no target")
	}
	if s.Pursuer.StuckRecoveries() != 0 {
		t.Fatal("reset must clear the stuck recovery counter")
	}
	if len(s.Pursuer.PatrolRoute()) == 0 {
		t.Fatal("the patrol route survives a reset")
	}
}

// --- Scenario: state transitions only land on decision ticks ---

func TestScenario_TransitionsFollowDecisionCadence(t *testing.T) {
	s := NewSim(
		WithBounds(Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 20, Y: 6, Z: 20}),
		WithSeed(7),
		WithDecisionInterval(10),
		WithScriptedParticipant("r1", 3.0, true, Vec3{X: 10, Z: 10}, Vec3{X: 14, Z: 10}),
		WithPursuer(Vec3{X: 4, Z: 10}, PursuerConfig{}),
	)

	s.RunTicks(600)

	changes := s.SimLog.Filter("state", "change")
	if len(changes) == 0 {
		dumpRun(t, s)
		t.Fatal("expected at least one state change in the scenario")
	}
	for _, e := range changes {
		if e.Tick%10 != 0 {
			t.Fatalf("state change at tick %d, off the decision cadence", e.Tick)
		}
	}
}

// --- Scenario: planned navigation feeds waypoints through steering ---

func TestScenario_PlannedPatrolUsesGridPaths(t *testing.T) {
	s := NewSim(
		WithBounds(Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 20, Y: 6, Z: 20}),
		WithSeed(9),
		WithDecisionInterval(10),
		WithObstacle("wall", Vec3{X: 8, Y: 0, Z: 4}, Vec3{X: 10, Y: 2, Z: 16}),
		WithPursuer(Vec3{X: 4, Z: 10}, PursuerConfig{NavMode: NavPlanned}),
	)

	sawPath := false
	for i := 0; i < 1800 && !sawPath; i++ {
		s.Step()
		if path := s.Pursuer.CurrentPath(); path != nil {
			sawPath = true
			for _, wp := range path {
				if !s.Grid.IsWalkableAt(wp) {
					t.Fatalf("planned waypoint %+v is not walkable", wp)
				}
			}
		}
	}
	if !sawPath {
		dumpRun(t, s)
		t.Fatal("planned patrol should produce grid paths")
	}
	if s.Pursuer.State != StatePatrolling {
		t.Fatalf("expected a patrolling pursuer, got %s", s.Pursuer.State)
	}
}

// --- Scenario: concealment zones lift stealth scores each tick ---

func TestScenario_ZoneRaisesStealth(t *testing.T) {
	s := NewSim(
		WithBounds(Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 20, Y: 6, Z: 20}),
		WithSeed(13),
		WithParticipant("p1", Vec3{X: 15, Z: 15}),
		WithParticipant("p2", Vec3{X: 5, Z: 5}),
		WithZone(SphereZone("bush", Vec3{X: 15, Z: 15}, 2, 25)),
		WithPursuer(Vec3{X: 10, Z: 10}, PursuerConfig{}),
	)

	s.RunTicks(2)

	inZone := s.Roster.Find("p1").StealthScore
	outside := s.Roster.Find("p2").StealthScore
	if inZone <= outside {
		t.Fatalf("zone should raise stealth: in=%.0f out=%.0f", inZone, outside)
	}
	if outside != stealthBaseExposed {
		t.Fatalf("exposed baseline should be %.0f, got %.0f", stealthBaseExposed, outside)
	}
	if inZone != stealthBaseExposed+25 {
		t.Fatalf("zone bonus should add 25, got %.0f", inZone)
	}
}

// --- Scenario: the reporter tracks the run ---

func TestScenario_ReporterObservesRun(t *testing.T) {
	s := NewSim(
		WithBounds(Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 20, Y: 6, Z: 20}),
		WithSeed(7),
		WithDecisionInterval(10),
		WithScriptedParticipant("r1", 3.0, true, Vec3{X: 10, Z: 10}, Vec3{X: 14, Z: 10}),
		WithPursuer(Vec3{X: 4, Z: 10}, PursuerConfig{}),
	)

	if s.RunUntil(func(s *Sim) bool { return !s.Roster.Find("r1").Alive }, 3600) < 0 {
		t.Fatal("setup failed: runner never caught")
	}
	// A short tail so the reporting cadence lands a snapshot after the catch.
	s.RunTicks(120)

	rep, ok := s.Reporter.Latest()
	if !ok {
		t.Fatal("reporter should have observed the run")
	}
	if rep.Tick == 0 {
		t.Fatal("latest report should carry a tick stamp")
	}
	if rep.Captures != 1 || rep.Caught != 1 {
		t.Fatalf("latest snapshot should reflect the capture, got captures=%d caught=%d",
			rep.Captures, rep.Caught)
	}
	if !strings.Contains(s.Reporter.FormatLatest(), "pursuer:") {
		t.Fatal("formatted report should describe the pursuer")
	}
	wr := s.Reporter.WindowSummary()
	if wr == nil {
		t.Fatal("expected a window report after a full run")
	}
	if wr.Captures == 0 {
		t.Fatal("window report should count the capture")
	}
}
