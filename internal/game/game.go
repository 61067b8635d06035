package game

import (
	"fmt"
	"log"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
)

// Viewer pixel layout.
const (
	borderWidth   = 24
	pixelsPerUnit = 28.0
)

// Game is the ebiten debug viewer around a Sim. Rendering samples the
// pursuer pose once per frame; all simulation state advances in Update on
// the fixed tick, never in Draw.
type Game struct {
	sim *Sim

	width  int
	height int
	offX   float64
	offY   float64

	showGrid    bool
	showZones   bool
	showFeelers bool
	showPath    bool
	showCone    bool
	showHUD     bool

	prevKeys map[ebiten.Key]bool

	// Simulation speed control: 0 = paused, then 0.5/1/2/4.
	simSpeed  float64
	tickAccum float64

	statusMsg   string
	statusTicks int
}

// New builds the viewer around a demo level: a bordered yard with a few
// obstacle boxes, two concealment zones and three scripted participants.
func New() *Game {
	sim := NewSim(
		WithBounds(Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 40, Y: 6, Z: 24}),
		WithSeed(7),
		WithObstacle("shed", Vec3{X: 8, Y: 0, Z: 6}, Vec3{X: 12, Y: 2.5, Z: 9}),
		WithObstacle("wall-long", Vec3{X: 18, Y: 0, Z: 12}, Vec3{X: 30, Y: 2, Z: 12.8}),
		WithObstacle("crate", Vec3{X: 31, Y: 0, Z: 4}, Vec3{X: 33, Y: 1.5, Z: 6}),
		WithObstacle("crate-2", Vec3{X: 5, Y: 0, Z: 17}, Vec3{X: 7, Y: 1.5, Z: 19}),
		WithZone(SphereZone("bush", Vec3{X: 15, Z: 18}, 2.5, 25)),
		WithZone(BoxZone("shadow", Vec3{X: 26, Y: -1, Z: 2}, Vec3{X: 32, Y: 3, Z: 8}, 15)),
		WithScriptedParticipant("h1", 1.8, false,
			Vec3{X: 4, Z: 4}, Vec3{X: 4, Z: 20}, Vec3{X: 14, Z: 20}),
		WithScriptedParticipant("h2", 3.2, true,
			Vec3{X: 36, Z: 20}, Vec3{X: 22, Z: 20}, Vec3{X: 36, Z: 6}),
		WithHiddenParticipant("h3", Vec3{X: 15, Z: 18}),
		WithPursuer(Vec3{X: 20, Z: 4}, PursuerConfig{NavMode: NavPlanned}),
	)

	g := &Game{
		sim:       sim,
		offX:      borderWidth,
		offY:      borderWidth,
		showGrid:  false,
		showZones: true,
		showCone:  true,
		showHUD:   true,
		prevKeys:  make(map[ebiten.Key]bool),
		simSpeed:  1,
	}
	g.width = borderWidth*2 + int(40*pixelsPerUnit)
	g.height = borderWidth*2 + int(24*pixelsPerUnit)
	return g
}

// Sim exposes the wrapped simulation (used by cmd wiring).
func (g *Game) Sim() *Sim { return g.sim }

// keyPressed is an edge-triggered key check.
func (g *Game) keyPressed(k ebiten.Key) bool {
	down := ebiten.IsKeyPressed(k)
	was := g.prevKeys[k]
	g.prevKeys[k] = down
	return down && !was
}

func (g *Game) Update() error {
	if g.keyPressed(ebiten.KeyG) {
		g.showGrid = !g.showGrid
	}
	if g.keyPressed(ebiten.KeyZ) {
		g.showZones = !g.showZones
	}
	if g.keyPressed(ebiten.KeyF) {
		g.showFeelers = !g.showFeelers
	}
	if g.keyPressed(ebiten.KeyV) {
		g.showCone = !g.showCone
	}
	if g.keyPressed(ebiten.KeyP) {
		g.showPath = !g.showPath
	}
	if g.keyPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.keyPressed(ebiten.KeyR) {
		g.sim.Reset()
		g.setStatus("round reset")
	}
	if g.keyPressed(ebiten.KeyTab) {
		if g.sim.Phase == PhaseSeeking {
			g.sim.SetPhase(PhaseLobby)
		} else {
			g.sim.SetPhase(PhaseSeeking)
		}
		g.setStatus("phase: " + g.sim.Phase.String())
	}
	if g.keyPressed(ebiten.KeyC) {
		report := g.sim.DebugReport(300)
		if err := clipboard.WriteAll(report); err != nil {
			log.Printf("clipboard write failed: %v", err)
			g.setStatus("clipboard write failed")
		} else {
			g.setStatus("debug report copied")
		}
	}

	if g.keyPressed(ebiten.KeySpace) {
		if g.simSpeed == 0 {
			g.simSpeed = 1
		} else {
			g.simSpeed = 0
		}
	}
	if g.keyPressed(ebiten.Key1) {
		g.simSpeed = 0.5
	}
	if g.keyPressed(ebiten.Key2) {
		g.simSpeed = 1
	}
	if g.keyPressed(ebiten.Key3) {
		g.simSpeed = 2
	}
	if g.keyPressed(ebiten.Key4) {
		g.simSpeed = 4
	}

	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1 {
		g.tickAccum--
		g.sim.Step()
	}

	if g.statusTicks > 0 {
		g.statusTicks--
	}
	return nil
}

func (g *Game) setStatus(msg string) {
	g.statusMsg = msg
	g.statusTicks = 180
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// worldToScreen maps a world XZ position to viewer pixels.
func (g *Game) worldToScreen(p Vec3) (float32, float32) {
	return float32(g.offX + p.X*pixelsPerUnit), float32(g.offY + p.Z*pixelsPerUnit)
}

func (g *Game) hudLines() []string {
	pu := g.sim.Pursuer
	target := "none"
	if pu.Target != nil {
		target = pu.Target.ID
	}
	lines := []string{
		fmt.Sprintf("T=%d  phase=%s  speed=%.1fx", g.sim.CurrentTick(), g.sim.Phase, g.simSpeed),
		fmt.Sprintf("pursuer: %s  target=%s", pu.State, target),
		"[G]rid [Z]ones [F]eelers [V]ision [P]ath [H]UD [R]eset [Tab]phase [C]opy [Space]pause [1-4]speed",
	}
	if g.statusTicks > 0 && g.statusMsg != "" {
		lines = append(lines, g.statusMsg)
	}
	return lines
}
