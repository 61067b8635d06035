package game

import "math"

// heightTolerance pads the vertical overlap test in the obstacle exclusion
// pass so obstacles resting on the ground still claim their cells.
const heightTolerance = 0.5

// GridBounds is the world-space region the walkability grid covers.
type GridBounds struct {
	Min Vec3
	Max Vec3
}

// GridCell is one cell of the walkability grid: the snapped ground point,
// whether the pursuer may stand there, and the surface normal. The cost and
// parent fields are search bookkeeping for path planning over the grid.
type GridCell struct {
	Col, Row int
	World    Vec3 // cell center at recorded ground height
	Walkable bool
	Normal   Vec3

	gCost    float64
	hCost    float64
	parent   int // cell index, -1 for none
	searchID uint64
	heapIdx  int
}

// WalkGrid is the static navigable-cell map. Built once per level from
// ground rays and obstacle bounds, read-only afterwards.
type WalkGrid struct {
	bounds   GridBounds
	cellSize float64
	cols     int
	rows     int
	cells    []GridCell

	searchID uint64 // bumped per FindPath so bookkeeping needs no clearing
}

// BuildWalkGrid constructs the grid from static geometry. Deterministic:
// same geometry, same grid.
//
// Pass one casts a ray down through each cell's full vertical extent; a cell
// is provisionally walkable when the hit surface tilts no more than
// maxSlopeDeg from vertical. Cells with no ground hit stay permanently
// unwalkable. Pass two clears any cell whose center lies inside a static
// obstacle's horizontal bounds with a ground height inside the obstacle's
// vertical span — ground bodies are skipped so the floor cannot block its
// own cells.
func BuildWalkGrid(bounds GridBounds, cellSize, maxSlopeDeg float64, rc RayCaster, bodies BodySource) *WalkGrid {
	cols := int(math.Ceil((bounds.Max.X - bounds.Min.X) / cellSize))
	rows := int(math.Ceil((bounds.Max.Z - bounds.Min.Z) / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	g := &WalkGrid{
		bounds:   bounds,
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([]GridCell, cols*rows),
	}

	minSlopeCos := math.Cos(maxSlopeDeg * math.Pi / 180)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cx := bounds.Min.X + (float64(col)+0.5)*cellSize
			cz := bounds.Min.Z + (float64(row)+0.5)*cellSize

			cell := GridCell{Col: col, Row: row, parent: -1}
			cell.World = Vec3{X: cx, Y: bounds.Min.Y, Z: cz}

			top := Vec3{X: cx, Y: bounds.Max.Y, Z: cz}
			bottom := Vec3{X: cx, Y: bounds.Min.Y, Z: cz}
			hit := rc.RaycastClosest(top, bottom)
			if hit.Hit {
				cell.World.Y = hit.Point.Y
				cell.Normal = hit.Normal
				// Angle from vertical: compare the normal against up.
				cell.Walkable = hit.Normal.Y >= minSlopeCos
			}

			g.cells[row*cols+col] = cell
		}
	}

	// Obstacle exclusion pass.
	for _, b := range bodies.StaticBodies() {
		if b.Kind == BodyGround {
			continue
		}
		for i := range g.cells {
			c := &g.cells[i]
			if !c.Walkable {
				continue
			}
			if !b.Contains2D(c.World.X, c.World.Z) {
				continue
			}
			if c.World.Y >= b.Min.Y-heightTolerance && c.World.Y <= b.Max.Y+heightTolerance {
				c.Walkable = false
			}
		}
	}

	return g
}

func (g *WalkGrid) Cols() int         { return g.cols }
func (g *WalkGrid) Rows() int         { return g.rows }
func (g *WalkGrid) CellSize() float64 { return g.cellSize }

// CellAt returns the cell at (col, row), or nil out of range.
func (g *WalkGrid) CellAt(col, row int) *GridCell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return nil
	}
	return &g.cells[row*g.cols+col]
}

// WorldToCell converts a world position to grid coordinates. The result may
// be out of range for positions outside the bounds.
func (g *WalkGrid) WorldToCell(p Vec3) (col, row int) {
	col = int(math.Floor((p.X - g.bounds.Min.X) / g.cellSize))
	row = int(math.Floor((p.Z - g.bounds.Min.Z) / g.cellSize))
	return col, row
}

// CellToWorld returns the recorded ground point at a cell center.
func (g *WalkGrid) CellToWorld(col, row int) Vec3 {
	if c := g.CellAt(col, row); c != nil {
		return c.World
	}
	return Vec3{
		X: g.bounds.Min.X + (float64(col)+0.5)*g.cellSize,
		Y: g.bounds.Min.Y,
		Z: g.bounds.Min.Z + (float64(row)+0.5)*g.cellSize,
	}
}

// Neighbors appends the 4-connected walkable neighbours of a cell to dst
// and returns it. Order is deterministic: -col, +col, -row, +row.
func (g *WalkGrid) Neighbors(c *GridCell, dst []*GridCell) []*GridCell {
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		n := g.CellAt(c.Col+d[0], c.Row+d[1])
		if n != nil && n.Walkable {
			dst = append(dst, n)
		}
	}
	return dst
}

// WalkableCount returns the number of walkable cells.
func (g *WalkGrid) WalkableCount() int {
	n := 0
	for i := range g.cells {
		if g.cells[i].Walkable {
			n++
		}
	}
	return n
}

// IsWalkableAt reports whether the cell under a world position is walkable.
func (g *WalkGrid) IsWalkableAt(p Vec3) bool {
	c := g.CellAt(g.WorldToCell(p))
	return c != nil && c.Walkable
}
