package chessboard

import (
	"go.viam.com/calibeval/dataset"
	"go.viam.com/calibeval/utils"
)

// Lattice is the set of reference points synthesized for a pattern. Evaluation points form the
// refined grid of corners, Limit points a ring one grid step outside the grid, Interior points the
// subdivided grid lines. Corners are the detectable inner corners in detection order.
type Lattice struct {
	Pattern    Pattern
	Evaluation PointSet
	Limit      PointSet
	Interior   PointSet
	Corners    PointSet
}

// NewLattice generates the lattice of a pattern. Every point set is ordered row by row, y outer and x
// inner, and the limit ring is walked bottom edge left to right, right edge bottom to top, top edge right
// to left, then left edge top to bottom.
func NewLattice(p Pattern) (*Lattice, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	nx, ny := p.Nodes()
	stepX, stepY := p.Steps()
	n := p.Subdivisions
	subX, subY := stepX/float64(n), stepY/float64(n)

	l := &Lattice{
		Pattern:    p,
		Evaluation: gridPointSet(nx, ny, stepX, stepY),
		Limit:      newPointSet(p.LimitCount()),
		Interior:   newPointSet(p.InteriorCount()),
		Corners:    gridPointSet(p.CountX, p.CountY, p.SquareSize, p.SquareSize),
	}

	interior, limit := 0, 0
	addInterior := func(x, y float64) {
		l.Interior.set(interior, x, y)
		interior++
	}
	addLimit := func(x, y float64) {
		l.Limit.set(limit, x, y)
		limit++
	}

	// interior lines, then the bottom and right sides of the ring
	for iy := 0; iy < ny; iy++ {
		y := float64(iy) * stepY
		for ix := 0; ix < nx; ix++ {
			x := float64(ix) * stepX
			lastX, lastY := ix == nx-1, iy == ny-1

			if !lastX {
				for i := 0; i < n; i++ {
					addInterior(x+float64(i)*subX, y)
				}
			} else {
				addInterior(x, y)
			}
			if !lastY {
				for i := 1; i < n; i++ {
					addInterior(x, y+float64(i)*subY)
				}
			}

			if iy == 0 {
				for i := 0; i < n; i++ {
					addLimit(x-float64(n-i)*subX, y-stepY)
				}
				if lastX {
					for i := n; i > 0; i-- {
						addLimit(x+float64(n-i)*subX, y-stepY)
					}
				}
			}
			if lastX {
				for i := 0; i < n; i++ {
					addLimit(x+stepX, y-float64(n-i)*subY)
				}
				if lastY {
					for i := n; i > 0; i-- {
						addLimit(x+stepX, y+float64(n-i)*subY)
					}
				}
			}
		}
	}

	// top and left sides of the ring, walking the grid backwards
	for jy := ny - 1; jy >= 0; jy-- {
		y := float64(jy) * stepY
		for jx := nx - 1; jx >= 0; jx-- {
			x := float64(jx) * stepX

			if jy == ny-1 {
				for i := 0; i < n; i++ {
					addLimit(x+float64(n-i)*subX, y+stepY)
				}
				if jx == 0 {
					for i := n; i > 0; i-- {
						addLimit(x-float64(n-i)*subX, y+stepY)
					}
				}
			}
			if jx == 0 {
				for i := 0; i < n; i++ {
					addLimit(x-stepX, y+float64(n-i)*subY)
				}
				if jy == 0 {
					for i := n; i > 0; i-- {
						addLimit(x-stepX, y-float64(n-i)*subY)
					}
				}
			}
		}
	}
	return l, nil
}

// Document returns a chessboard document carrying the pattern geometry, the detectable corners and the
// limit and interior point sets, with no collections.
func (l *Lattice) Document() *dataset.Chessboards {
	p := l.Pattern
	doc := dataset.NewChessboards(p.CountX, p.CountY, p.SquareSize)
	doc.Points = l.Corners.Rows()
	doc.LPoints = l.Limit.Rows()
	doc.IPoints = l.Interior.Rows()
	return doc
}

// gridPointSet lays out countX by countY points with the given spacing, y outer and x inner.
func gridPointSet(countX, countY int, stepX, stepY float64) PointSet {
	ps := newPointSet(countX * countY)
	grid := utils.Grid2D(utils.Arange(0, stepX, countX), utils.Arange(0, stepY, countY))
	for i := 0; i < countX*countY; i++ {
		ps.set(i, grid.At(i, 0), grid.At(i, 1))
	}
	return ps
}
