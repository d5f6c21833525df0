package network

import "math"

// DefaultTolerance is the distance below which two coordinates are the same place
const DefaultTolerance = 1e-14

type cellKey struct {
	cx, cy float64
}

// cellFactor sizes grid cells relative to the tolerance. Cells much wider
// than the tolerance keep the rounding error of x/cellSize far below one
// cell for coordinates whose float spacing is finer than the tolerance.
const cellFactor = 1024

// coordIndex finds stations by location. Coordinates are quantized to a
// grid; any point within tolerance of a station lies in the station's
// cell or one of the eight around it.
type coordIndex struct {
	tolerance float64
	cellSize  float64
	cells     map[cellKey][]*Station
}

func newCoordIndex(tolerance float64) *coordIndex {
	return &coordIndex{
		tolerance: tolerance,
		cellSize:  tolerance * cellFactor,
		cells:     make(map[cellKey][]*Station),
	}
}

func (ix *coordIndex) key(x, y float64) cellKey {
	return cellKey{
		cx: math.Floor(x / ix.cellSize),
		cy: math.Floor(y / ix.cellSize),
	}
}

// insert registers s under its location
func (ix *coordIndex) insert(s *Station) {
	k := ix.key(s.X, s.Y)
	ix.cells[k] = append(ix.cells[k], s)
}

// find returns the earliest created station within tolerance of (x, y)
func (ix *coordIndex) find(x, y float64) *Station {
	k := ix.key(x, y)

	var best *Station
	for dx := -1.0; dx <= 1; dx++ {
		for dy := -1.0; dy <= 1; dy++ {
			for _, s := range ix.cells[cellKey{cx: k.cx + dx, cy: k.cy + dy}] {
				if best != nil && best.ID <= s.ID {
					continue
				}
				if within(s.X, s.Y, x, y, ix.tolerance) {
					best = s
				}
			}
		}
	}
	return best
}

func within(x1, y1, x2, y2, tolerance float64) bool {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx+dy*dy) < tolerance
}
