package game

import (
	"container/heap"
	"math"
)

// cellHeap is the A* open list, ordered by f = g + h.
type cellHeap []*GridCell

func (h cellHeap) Len() int { return len(h) }
func (h cellHeap) Less(i, j int) bool {
	return (h[i].gCost + h[i].hCost) < (h[j].gCost + h[j].hCost)
}
func (h cellHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}
func (h *cellHeap) Push(x any) {
	c := x.(*GridCell)
	c.heapIdx = len(*h)
	*h = append(*h, c)
}
func (h *cellHeap) Pop() any {
	old := *h
	c := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return c
}

// FindPath runs A* over the walkable cells from the cell under start to the
// cell under goal, 4-connected. Returns world-space waypoints at cell
// centers (goal cell last), or nil when either endpoint is unwalkable or no
// path exists. Search bookkeeping lives in the cells themselves, stamped per
// search, so repeated queries allocate only the open list.
func (g *WalkGrid) FindPath(start, goal Vec3) []Vec3 {
	sc := g.CellAt(g.WorldToCell(start))
	gc := g.CellAt(g.WorldToCell(goal))
	if sc == nil || gc == nil || !sc.Walkable || !gc.Walkable {
		return nil
	}
	if sc == gc {
		return []Vec3{gc.World}
	}

	g.searchID++
	id := g.searchID

	manhattan := func(a, b *GridCell) float64 {
		return (math.Abs(float64(a.Col-b.Col)) + math.Abs(float64(a.Row-b.Row))) * g.cellSize
	}

	sc.searchID = id
	sc.gCost = 0
	sc.hCost = manhattan(sc, gc)
	sc.parent = -1

	open := cellHeap{sc}
	heap.Init(&open)
	closed := make(map[int]bool)

	var scratch [4]*GridCell
	for open.Len() > 0 {
		cur := heap.Pop(&open).(*GridCell)
		curIdx := cur.Row*g.cols + cur.Col
		if cur == gc {
			return g.assemblePath(cur)
		}
		closed[curIdx] = true

		for _, n := range g.Neighbors(cur, scratch[:0]) {
			nIdx := n.Row*g.cols + n.Col
			if closed[nIdx] {
				continue
			}
			tentative := cur.gCost + g.cellSize
			if n.searchID != id {
				n.searchID = id
				n.gCost = tentative
				n.hCost = manhattan(n, gc)
				n.parent = curIdx
				heap.Push(&open, n)
			} else if tentative < n.gCost {
				n.gCost = tentative
				n.parent = curIdx
				heap.Fix(&open, n.heapIdx)
			}
		}
	}
	return nil
}

// assemblePath walks parent links back to the start and reverses.
func (g *WalkGrid) assemblePath(end *GridCell) []Vec3 {
	var rev []Vec3
	for c := end; c != nil; {
		rev = append(rev, c.World)
		if c.parent < 0 {
			break
		}
		c = &g.cells[c.parent]
	}
	path := make([]Vec3, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}
