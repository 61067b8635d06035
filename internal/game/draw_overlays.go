package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

var hudFace = text.NewGoXFace(basicfont.Face7x13)

var (
	colGround    = color.RGBA{R: 34, G: 48, B: 38, A: 255}
	colObstacle  = color.RGBA{R: 90, G: 90, B: 96, A: 255}
	colBlocked   = color.RGBA{R: 160, G: 40, B: 40, A: 70}
	colZone      = color.RGBA{R: 40, G: 90, B: 180, A: 80}
	colPursuer   = color.RGBA{R: 230, G: 70, B: 50, A: 255}
	colCone      = color.RGBA{R: 230, G: 200, B: 60, A: 60}
	colPath      = color.RGBA{R: 70, G: 200, B: 250, A: 160}
	colFeelerHit = color.RGBA{R: 240, G: 90, B: 60, A: 200}
	colFeelerOK  = color.RGBA{R: 90, G: 240, B: 120, A: 160}
	colHUD       = color.RGBA{R: 235, G: 235, B: 225, A: 255}
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colGround)

	if g.showGrid {
		g.drawGridOverlay(screen)
	}
	if g.showZones {
		g.drawZones(screen)
	}
	g.drawObstacles(screen)
	if g.showCone {
		g.drawVisionCone(screen)
	}
	if g.showPath {
		g.drawPlannedPath(screen)
	}
	g.drawParticipants(screen)
	g.drawPursuer(screen)
	if g.showFeelers {
		g.drawFeelers(screen)
	}
	if g.showHUD {
		g.drawHUD(screen)
	}
}

// drawGridOverlay tints unwalkable cells.
func (g *Game) drawGridOverlay(screen *ebiten.Image) {
	grid := g.sim.Grid
	if grid == nil {
		return
	}
	cell := float32(grid.CellSize() * pixelsPerUnit)
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			c := grid.CellAt(col, row)
			if c == nil || c.Walkable {
				continue
			}
			x, y := g.worldToScreen(Vec3{
				X: c.World.X - grid.CellSize()/2,
				Z: c.World.Z - grid.CellSize()/2,
			})
			vector.DrawFilledRect(screen, x, y, cell, cell, colBlocked, false)
		}
	}
}

func (g *Game) drawZones(screen *ebiten.Image) {
	for _, z := range g.sim.Zones {
		switch z.Shape {
		case ZoneSphere:
			cx, cy := g.worldToScreen(z.Center)
			vector.DrawFilledCircle(screen, cx, cy, float32(z.Radius*pixelsPerUnit), colZone, true)
		case ZoneBox:
			x0, y0 := g.worldToScreen(z.Min)
			x1, y1 := g.worldToScreen(z.Max)
			vector.DrawFilledRect(screen, x0, y0, x1-x0, y1-y0, colZone, false)
		}
	}
}

func (g *Game) drawObstacles(screen *ebiten.Image) {
	for _, b := range g.sim.World.StaticBodies() {
		if b.Kind == BodyGround {
			continue
		}
		x0, y0 := g.worldToScreen(b.Min)
		x1, y1 := g.worldToScreen(b.Max)
		vector.DrawFilledRect(screen, x0, y0, x1-x0, y1-y0, colObstacle, false)
	}
}

// drawVisionCone draws the forward view cone as two edge rays plus an arc
// fan of short segments.
func (g *Game) drawVisionCone(screen *ebiten.Image) {
	pu := g.sim.Pursuer
	cfg := pu.Config().Perception
	cx, cy := g.worldToScreen(pu.Pos)
	steps := 24
	var px, py float32
	for i := 0; i <= steps; i++ {
		a := pu.Facing - cfg.ViewHalfAngle + 2*cfg.ViewHalfAngle*float64(i)/float64(steps)
		end := pu.Pos.Add(HeadingVec(a).Scale(cfg.ViewDistance))
		ex, ey := g.worldToScreen(end)
		if i == 0 || i == steps {
			vector.StrokeLine(screen, cx, cy, ex, ey, 1, colCone, true)
		}
		if i > 0 {
			vector.StrokeLine(screen, px, py, ex, ey, 1, colCone, true)
		}
		px, py = ex, ey
	}
}

func (g *Game) drawPlannedPath(screen *ebiten.Image) {
	path := g.sim.Pursuer.CurrentPath()
	if len(path) < 2 {
		return
	}
	for i := 1; i < len(path); i++ {
		x0, y0 := g.worldToScreen(path[i-1])
		x1, y1 := g.worldToScreen(path[i])
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, colPath, true)
	}
}

// drawParticipants shades each participant from exposed (bright) to
// concealed (dim) by stealth score.
func (g *Game) drawParticipants(screen *ebiten.Image) {
	for _, p := range g.sim.Roster.Participants() {
		cx, cy := g.worldToScreen(p.Pos)
		if !p.Alive {
			vector.StrokeCircle(screen, cx, cy, 6, 1.5, color.RGBA{R: 120, G: 120, B: 120, A: 200}, true)
			continue
		}
		v := uint8(230 - 1.6*p.StealthScore)
		vector.DrawFilledCircle(screen, cx, cy, 6, color.RGBA{R: 70, G: v, B: 90, A: 255}, true)
	}
}

func (g *Game) drawPursuer(screen *ebiten.Image) {
	pu := g.sim.Pursuer
	cx, cy := g.worldToScreen(pu.Pos)
	vector.DrawFilledCircle(screen, cx, cy, 7, colPursuer, true)
	// Facing tick.
	tip := pu.Pos.Add(HeadingVec(pu.Facing).Scale(0.7))
	tx, ty := g.worldToScreen(tip)
	vector.StrokeLine(screen, cx, cy, tx, ty, 2, color.White, true)
	// Last-known marker while searching.
	if pu.State == StateSearching {
		lx, ly := g.worldToScreen(pu.LastKnownTargetPos)
		vector.StrokeCircle(screen, lx, ly, float32(pu.Config().SearchRadius*pixelsPerUnit), 1, colCone, true)
	}
}

func (g *Game) drawFeelers(screen *ebiten.Image) {
	pu := g.sim.Pursuer
	sd := pu.LastSteer()
	if sd.Dir == (Vec3{}) {
		return
	}
	base := math.Atan2(sd.Dir.Z, sd.Dir.X) - sd.Offsets[sd.ChosenIdx]
	cx, cy := g.worldToScreen(pu.Pos)
	for i := range sd.Offsets {
		end := pu.Pos.Add(HeadingVec(base + sd.Offsets[i]).Scale(sd.Distances[i]))
		ex, ey := g.worldToScreen(end)
		col := colFeelerOK
		if sd.Hits[i] {
			col = colFeelerHit
		}
		w := float32(1)
		if i == sd.ChosenIdx {
			w = 2.5
		}
		vector.StrokeLine(screen, cx, cy, ex, ey, w, col, true)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	y := 4.0
	for _, line := range g.hudLines() {
		op := &text.DrawOptions{}
		op.GeoM.Translate(6, y)
		op.ColorScale.ScaleWithColor(colHUD)
		text.Draw(screen, line, hudFace, op)
		y += 14
	}
}
