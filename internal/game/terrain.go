package game

import "math"

// Heightfield is a regular grid of ground heights with bilinear sampling.
// It stands in for the physics engine's terrain body: downward grid rays and
// line-of-sight rays both march against it.
type Heightfield struct {
	OriginX, OriginZ float64
	CellSize         float64
	Cols, Rows       int
	heights          []float64
}

// NewFlatHeightfield builds a heightfield where every sample sits at height y.
func NewFlatHeightfield(originX, originZ, cellSize float64, cols, rows int, y float64) *Heightfield {
	hf := &Heightfield{
		OriginX:  originX,
		OriginZ:  originZ,
		CellSize: cellSize,
		Cols:     cols,
		Rows:     rows,
		heights:  make([]float64, cols*rows),
	}
	for i := range hf.heights {
		hf.heights[i] = y
	}
	return hf
}

// SetHeight overwrites one sample. Out-of-range indices are ignored.
func (hf *Heightfield) SetHeight(col, row int, y float64) {
	if col < 0 || row < 0 || col >= hf.Cols || row >= hf.Rows {
		return
	}
	hf.heights[row*hf.Cols+col] = y
}

func (hf *Heightfield) heightAt(col, row int) float64 {
	if col < 0 {
		col = 0
	}
	if row < 0 {
		row = 0
	}
	if col >= hf.Cols {
		col = hf.Cols - 1
	}
	if row >= hf.Rows {
		row = hf.Rows - 1
	}
	return hf.heights[row*hf.Cols+col]
}

// Sample returns the bilinearly interpolated ground height at (x, z).
// Positions outside the field clamp to the border samples.
func (hf *Heightfield) Sample(x, z float64) float64 {
	fx := (x - hf.OriginX) / hf.CellSize
	fz := (z - hf.OriginZ) / hf.CellSize
	c0 := int(math.Floor(fx))
	r0 := int(math.Floor(fz))
	tx := fx - float64(c0)
	tz := fz - float64(r0)

	h00 := hf.heightAt(c0, r0)
	h10 := hf.heightAt(c0+1, r0)
	h01 := hf.heightAt(c0, r0+1)
	h11 := hf.heightAt(c0+1, r0+1)

	top := h00 + (h10-h00)*tx
	bot := h01 + (h11-h01)*tx
	return top + (bot-top)*tz
}

// Normal returns the upward surface normal at (x, z) from central differences.
func (hf *Heightfield) Normal(x, z float64) Vec3 {
	e := hf.CellSize * 0.5
	dhdx := (hf.Sample(x+e, z) - hf.Sample(x-e, z)) / (2 * e)
	dhdz := (hf.Sample(x, z+e) - hf.Sample(x, z-e)) / (2 * e)
	return Vec3{X: -dhdx, Y: 1, Z: -dhdz}.Norm()
}

// raymarch walks the segment from -> to in fixed steps and returns the first
// point where the segment dips below the terrain surface. A short bisection
// refines the crossing. Returns false when the segment stays above ground.
func (hf *Heightfield) raymarch(from, to Vec3) (Vec3, bool) {
	seg := to.Sub(from)
	length := seg.Len()
	if length < 1e-9 {
		return Vec3{}, false
	}
	step := hf.CellSize * 0.25
	if step <= 0 {
		step = 0.25
	}
	steps := int(length/step) + 1

	prev := from
	prevAbove := from.Y >= hf.Sample(from.X, from.Z)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := from.Add(seg.Scale(t))
		above := p.Y >= hf.Sample(p.X, p.Z)
		if prevAbove && !above {
			// Bisect between prev and p for a tighter hit point.
			lo, hi := prev, p
			for k := 0; k < 12; k++ {
				mid := lo.Add(hi.Sub(lo).Scale(0.5))
				if mid.Y >= hf.Sample(mid.X, mid.Z) {
					lo = mid
				} else {
					hi = mid
				}
			}
			hit := lo
			hit.Y = hf.Sample(hit.X, hit.Z)
			return hit, true
		}
		prev = p
		prevAbove = above
	}
	return Vec3{}, false
}
