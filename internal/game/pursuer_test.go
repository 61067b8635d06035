package game

import (
	"math"
	"testing"
)

func newTestPursuer(pos Vec3) *Pursuer {
	return NewPursuer(pos, PursuerConfig{})
}

func TestDecide_VisibleWinsOverAudible(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	seen := &Participant{ID: "seen", Pos: Vec3{X: 8}, Alive: true}
	heard := &Participant{ID: "heard", Pos: Vec3{X: 2}, Alive: true}
	pu.Decide(Perception{Visible: []*Participant{seen}, Audible: []*Participant{heard}})
	if pu.State != StateChasing {
		t.Fatalf("expected chasing, got %s", pu.State)
	}
	if pu.Target != seen {
		t.Fatal("expected the visible participant as target")
	}
}

func TestDecide_ClosestVisibleWins(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	far := &Participant{ID: "far", Pos: Vec3{X: 9}, Alive: true}
	near := &Participant{ID: "near", Pos: Vec3{X: 4}, Alive: true}
	pu.Decide(Perception{Visible: []*Participant{far, near}})
	if pu.Target != near {
		t.Fatal("expected the closer visible participant as target")
	}
}

func TestDecide_EqualDistanceTieKeepsIterationOrder(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	a := &Participant{ID: "a", Pos: Vec3{X: 5}, Alive: true}
	b := &Participant{ID: "b", Pos: Vec3{X: -5}, Alive: true}
	pu.Decide(Perception{Visible: []*Participant{a, b}})
	if pu.Target != a {
		t.Fatal("equidistant targets must resolve to the first in iteration order")
	}
}

func TestDecide_AudibleOnlyStartsSearch(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	heard := &Participant{ID: "heard", Pos: Vec3{X: 6, Z: 2}, Alive: true}
	pu.Decide(Perception{Audible: []*Participant{heard}})
	if pu.State != StateSearching {
		t.Fatalf("expected searching, got %s", pu.State)
	}
	if pu.Target != nil {
		t.Fatal("searching holds no target reference, only a last known position")
	}
	if pu.LastKnownTargetPos != heard.Pos {
		t.Fatal("last known position should be the audible participant's position")
	}
}

func TestDecide_SearchExpiresToPatrolling(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	heard := &Participant{ID: "heard", Pos: Vec3{X: 6}, Alive: true}
	pu.Decide(Perception{Audible: []*Participant{heard}})

	pu.searchElapsed = pu.cfg.SearchDuration - 0.1
	pu.Decide(Perception{})
	if pu.State != StateSearching {
		t.Fatal("search must not expire before its duration elapses")
	}

	pu.searchElapsed = pu.cfg.SearchDuration
	pu.Decide(Perception{})
	if pu.State != StatePatrolling {
		t.Fatalf("expired search must become patrolling, got %s", pu.State)
	}
}

func TestDecide_FreshSoundRestartsSearchTimer(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	heard := &Participant{ID: "heard", Pos: Vec3{X: 6}, Alive: true}
	pu.Decide(Perception{Audible: []*Participant{heard}})
	pu.searchElapsed = pu.cfg.SearchDuration - 0.5

	heard.Pos = Vec3{X: 9}
	pu.Decide(Perception{Audible: []*Participant{heard}})
	if pu.searchElapsed != 0 {
		t.Fatal("re-acquisition by sound must restart the search timer")
	}
	if pu.LastKnownTargetPos != heard.Pos {
		t.Fatal("fresh sound must refresh the last known position")
	}
}

func TestDecide_ChaseIsStickyWithoutStimulus(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	target := &Participant{ID: "t", Pos: Vec3{X: 8}, Alive: true}
	pu.Decide(Perception{Visible: []*Participant{target}})

	pu.Decide(Perception{})
	if pu.State != StateChasing || pu.Target != target {
		t.Fatal("chasing a live target must persist through an empty interval")
	}
}

func TestDecide_DeadTargetFallsBackToPatrolling(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	target := &Participant{ID: "t", Pos: Vec3{X: 8}, Alive: true}
	pu.Decide(Perception{Visible: []*Participant{target}})

	target.Alive = false
	pu.Decide(Perception{})
	if pu.State != StatePatrolling {
		t.Fatalf("invalidated target must force patrolling, got %s", pu.State)
	}
	if pu.Target != nil {
		t.Fatal("invalidated target must be cleared")
	}
}

func TestDecide_IdleWithRouteStartsPatrol(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	pu.SetPatrolRoute([]Vec3{{X: 5}, {X: 5, Z: 5}})
	pu.Decide(Perception{})
	if pu.State != StatePatrolling {
		t.Fatalf("idle pursuer with a route should start patrolling, got %s", pu.State)
	}
}

func TestDecide_IdleWithoutRouteStaysIdle(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	pu.Decide(Perception{})
	if pu.State != StateIdle {
		t.Fatalf("idle pursuer with no route should stay idle, got %s", pu.State)
	}
}

func TestCapture_FiresOnceAndClearsTarget(t *testing.T) {
	roster := NewRoster()
	target := &Participant{ID: "t", Pos: Vec3{X: 1}, Health: 100, Alive: true}
	roster.Add(target)

	pu := newTestPursuer(Vec3{})
	pu.Decide(Perception{Visible: []*Participant{target}})

	w := openWorld()
	rng := testRNG()
	ev, caught := pu.Update(1.0/60, w, nil, roster, rng)
	if !caught {
		t.Fatal("target within capture radius must be caught")
	}
	if ev.TargetID != "t" {
		t.Fatalf("capture event names wrong target: %q", ev.TargetID)
	}
	if pu.Target != nil {
		t.Fatal("capture must clear the target")
	}
	if target.Alive {
		t.Fatal("capture must defeat the target through the damage interface")
	}

	// Still chasing until the next decision, but with no target there is
	// nothing to re-capture.
	if _, again := pu.Update(1.0/60, w, nil, roster, rng); again {
		t.Fatal("capture must fire exactly once")
	}

	pu.Decide(Perception{})
	if pu.State != StatePatrolling {
		t.Fatalf("next decision after capture should fall back to patrolling, got %s", pu.State)
	}
}

func TestCapture_NotAtArmLength(t *testing.T) {
	roster := NewRoster()
	target := &Participant{ID: "t", Pos: Vec3{X: 2}, Health: 100, Alive: true}
	roster.Add(target)

	pu := newTestPursuer(Vec3{})
	pu.Decide(Perception{Visible: []*Participant{target}})
	if _, caught := pu.Update(1.0/60, openWorld(), nil, roster, testRNG()); caught {
		t.Fatal("no capture expected outside the capture radius")
	}
}

func TestForceIdle_DropsTargetAndState(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	target := &Participant{ID: "t", Pos: Vec3{X: 8}, Alive: true}
	pu.Decide(Perception{Visible: []*Participant{target}})

	pu.ForceIdle()
	if pu.State != StateIdle || pu.Target != nil {
		t.Fatal("force idle must clear both state and target")
	}
}

func TestPatrol_AdvancesWaypointsCyclically(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	route := []Vec3{{X: 1}, {X: 10}, {X: 10, Z: 10}}
	pu.SetPatrolRoute(route)
	pu.Decide(Perception{})

	// First waypoint is within the arrival radius, so the goal advances.
	goal, ok := pu.patrolGoal()
	if !ok {
		t.Fatal("expected a patrol goal")
	}
	if goal != route[1] {
		t.Fatalf("expected advance to waypoint 1, got %+v", goal)
	}
}

func TestChasing_MovesTowardTarget(t *testing.T) {
	roster := NewRoster()
	target := &Participant{ID: "t", Pos: Vec3{X: 10}, Health: 100, Alive: true}
	roster.Add(target)

	pu := newTestPursuer(Vec3{})
	pu.Decide(Perception{Visible: []*Participant{target}})

	w := openWorld()
	rng := testRNG()
	start := pu.Pos
	for i := 0; i < 60; i++ {
		pu.Update(1.0/60, w, nil, roster, rng)
	}
	if pu.Pos.X <= start.X {
		t.Fatal("chasing pursuer should close distance along +X")
	}
	if math.Abs(pu.Facing) > 0.01 {
		t.Fatalf("facing should follow the movement heading, got %.3f", pu.Facing)
	}
	// One second at run speed.
	moved := HorizDist(start, pu.Pos)
	if moved < pu.cfg.RunSpeed*0.9 {
		t.Fatalf("expected roughly run-speed movement, moved %.2f", moved)
	}
}

func TestIdle_LookAroundDoesNotMove(t *testing.T) {
	pu := newTestPursuer(Vec3{X: 3, Z: 3})
	w := openWorld()
	rng := testRNG()
	var facings []float64
	for i := 0; i < 240; i++ {
		pu.Update(1.0/60, w, nil, NewRoster(), rng)
		facings = append(facings, pu.Facing)
	}
	if pu.Pos != (Vec3{X: 3, Z: 3}) {
		t.Fatal("idle pursuer must not move")
	}
	min, max := facings[0], facings[0]
	for _, f := range facings {
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	if max-min < 0.1 {
		t.Fatal("idle pursuer should sweep its look direction")
	}
}

func TestReset_RestoresInitialState(t *testing.T) {
	pu := newTestPursuer(Vec3{})
	target := &Participant{ID: "t", Pos: Vec3{X: 8}, Alive: true}
	pu.Decide(Perception{Visible: []*Participant{target}})
	pu.stuckRecoveries = 3

	pu.Reset(Vec3{X: 1, Z: 1})
	if pu.State != StateIdle || pu.Target != nil {
		t.Fatal("reset must return to idle with no target")
	}
	if pu.Pos != (Vec3{X: 1, Z: 1}) {
		t.Fatal("reset must move the pursuer to the given spawn")
	}
	if pu.StuckRecoveries() != 0 {
		t.Fatal("reset must clear the stuck recovery counter")
	}
}
