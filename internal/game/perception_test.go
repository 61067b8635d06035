package game

import (
	"math"
	"math/rand"
	"testing"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(1)) // #nosec G404 -- test determinism
}

func openWorld() *StaticWorld {
	return NewStaticWorld()
}

func TestPerceive_ExposedParticipantAheadIsVisible(t *testing.T) {
	p := &Participant{ID: "h1", Pos: Vec3{X: 5}, Alive: true, StealthScore: 0}
	perc := Perceive(Vec3{}, 0, DefaultPerceptionConfig(), []*Participant{p}, openWorld(), testRNG())
	// Detection chance is 1.0 at stealth 0, so the gate always passes.
	if len(perc.Visible) != 1 || perc.Visible[0] != p {
		t.Fatal("fully exposed participant straight ahead should be visible")
	}
}

func TestPerceive_MaxStealthNeverPassesGate(t *testing.T) {
	p := &Participant{ID: "h1", Pos: Vec3{X: 5}, Alive: true, StealthScore: 100}
	rng := testRNG()
	for i := 0; i < 200; i++ {
		perc := Perceive(Vec3{}, 0, DefaultPerceptionConfig(), []*Participant{p}, openWorld(), rng)
		if len(perc.Visible) != 0 {
			t.Fatal("stealth 100 beyond point-blank range must never be visible")
		}
	}
}

func TestPerceive_PointBlankOverrideSkipsGateAndCone(t *testing.T) {
	// Behind the pursuer, stealth 100: both the probability gate and the
	// cone would reject, but at distance <= 3 the override goes straight
	// to line of sight.
	p := &Participant{ID: "h1", Pos: Vec3{X: -2}, Alive: true, StealthScore: 100}
	perc := Perceive(Vec3{}, 0, DefaultPerceptionConfig(), []*Participant{p}, openWorld(), testRNG())
	if len(perc.Visible) != 1 {
		t.Fatal("point-blank high-stealth participant must still get the LOS check and be seen")
	}
}

func TestPerceive_PointBlankOverrideStillOccludable(t *testing.T) {
	w := NewStaticWorld()
	w.AddBody(StaticBody{Name: "wall", Kind: BodyObstacle,
		Min: Vec3{X: 0.8, Y: -1, Z: -3}, Max: Vec3{X: 1.2, Y: 4, Z: 3}})
	p := &Participant{ID: "h1", Pos: Vec3{X: 2}, Alive: true, StealthScore: 95}
	perc := Perceive(Vec3{}, 0, DefaultPerceptionConfig(), []*Participant{p}, w, testRNG())
	if len(perc.Visible) != 0 {
		t.Fatal("point-blank override must not see through walls")
	}
}

func TestPerceive_OutsideConeNeverVisible(t *testing.T) {
	// Directly behind at stealth 0, distance 5: passes the gate every
	// interval yet must always fail the cone test.
	p := &Participant{ID: "h1", Pos: Vec3{X: -5}, Alive: true, StealthScore: 0}
	rng := testRNG()
	for i := 0; i < 200; i++ {
		perc := Perceive(Vec3{}, 0, DefaultPerceptionConfig(), []*Participant{p}, openWorld(), rng)
		if len(perc.Visible) != 0 {
			t.Fatal("participant behind the pursuer must never be visible")
		}
	}
}

func TestPerceive_ConeEdge(t *testing.T) {
	cfg := DefaultPerceptionConfig()
	rng := testRNG()
	inside := math.Cos(cfg.ViewHalfAngle - 0.02)
	insideZ := math.Sin(cfg.ViewHalfAngle - 0.02)
	p := &Participant{ID: "h1", Pos: Vec3{X: inside * 5, Z: insideZ * 5}, Alive: true, StealthScore: 0}
	perc := Perceive(Vec3{}, 0, cfg, []*Participant{p}, openWorld(), rng)
	if len(perc.Visible) != 1 {
		t.Fatal("participant just inside the cone edge should be visible")
	}

	outside := math.Cos(cfg.ViewHalfAngle + 0.02)
	outsideZ := math.Sin(cfg.ViewHalfAngle + 0.02)
	p.Pos = Vec3{X: outside * 5, Z: outsideZ * 5}
	for i := 0; i < 100; i++ {
		perc = Perceive(Vec3{}, 0, cfg, []*Participant{p}, openWorld(), rng)
		if len(perc.Visible) != 0 {
			t.Fatal("participant just outside the cone edge must never be visible")
		}
	}
}

func TestPerceive_BeyondViewDistance(t *testing.T) {
	cfg := DefaultPerceptionConfig()
	p := &Participant{ID: "h1", Pos: Vec3{X: cfg.ViewDistance + 1}, Alive: true, StealthScore: 0}
	rng := testRNG()
	for i := 0; i < 100; i++ {
		perc := Perceive(Vec3{}, 0, cfg, []*Participant{p}, openWorld(), rng)
		if len(perc.Visible) != 0 {
			t.Fatal("participant beyond view distance must never be visible")
		}
	}
}

func TestPerceive_OccludedNeverVisible(t *testing.T) {
	w := NewStaticWorld()
	w.AddBody(StaticBody{Name: "wall", Kind: BodyObstacle,
		Min: Vec3{X: 2, Y: -1, Z: -3}, Max: Vec3{X: 2.5, Y: 4, Z: 3}})
	p := &Participant{ID: "h1", Pos: Vec3{X: 6}, Alive: true, StealthScore: 0}
	rng := testRNG()
	for i := 0; i < 100; i++ {
		perc := Perceive(Vec3{}, 0, DefaultPerceptionConfig(), []*Participant{p}, w, rng)
		if len(perc.Visible) != 0 {
			t.Fatal("occluded participant must never be visible")
		}
	}
}

func TestPerceive_DeadParticipantsSkipped(t *testing.T) {
	p := &Participant{ID: "h1", Pos: Vec3{X: 5}, Alive: false, StealthScore: 0, Running: true}
	perc := Perceive(Vec3{}, 0, DefaultPerceptionConfig(), []*Participant{p, nil}, openWorld(), testRNG())
	if len(perc.Visible) != 0 || len(perc.Audible) != 0 {
		t.Fatal("dead or missing participants must be skipped, not faulted on")
	}
}

func TestAudible_RunningParticipant(t *testing.T) {
	cfg := DefaultPerceptionConfig()
	p := &Participant{ID: "h1", Pos: Vec3{X: 10}, Alive: true, Running: true}
	perc := Perceive(Vec3{}, 0, cfg, []*Participant{p}, openWorld(), testRNG())
	if len(perc.Audible) != 1 {
		t.Fatal("running participant inside hearing range should be audible")
	}

	p.Pos = Vec3{X: cfg.HearingDistance + 1}
	perc = Perceive(Vec3{}, 0, cfg, []*Participant{p}, openWorld(), testRNG())
	if len(perc.Audible) != 0 {
		t.Fatal("running participant beyond hearing range should be silent")
	}
}

func TestAudible_StationaryNeverAudible(t *testing.T) {
	p := &Participant{ID: "h1", Pos: Vec3{X: 0.5}, Alive: true}
	perc := Perceive(Vec3{}, 0, DefaultPerceptionConfig(), []*Participant{p}, openWorld(), testRNG())
	if len(perc.Audible) != 0 {
		t.Fatal("zero noise means never audible, even at touching range")
	}
}

func TestNoiseLevel_Scaling(t *testing.T) {
	run := &Participant{Alive: true, Running: true}
	if got := NoiseLevel(run); got != 1.0 {
		t.Fatalf("running noise should be 1.0, got %.2f", got)
	}

	walk := &Participant{Alive: true, Vel: Vec3{X: 1}}
	if got := NoiseLevel(walk); got != 0.5 {
		t.Fatalf("moving noise should be 0.5, got %.2f", got)
	}

	crouchWalk := &Participant{Alive: true, Vel: Vec3{X: 1}, Crouching: true}
	if got := NoiseLevel(crouchWalk); got != 0.25 {
		t.Fatalf("crouch-walking noise should be 0.25, got %.2f", got)
	}

	sneaky := &Participant{Alive: true, Running: true, StealthScore: 100}
	if got := NoiseLevel(sneaky); got != 0.5 {
		t.Fatalf("max stealth should halve running noise, got %.2f", got)
	}

	still := &Participant{Alive: true}
	if got := NoiseLevel(still); got != 0 {
		t.Fatalf("stationary noise should be 0, got %.2f", got)
	}
}
