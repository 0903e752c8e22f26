// Package chessboard synthesizes the reference lattices of a planar chessboard pattern and resolves the
// pattern's pose in the rig's root frame for every collection.
package chessboard

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/calibeval/dataset"
)

// DefaultSubdivisions is the number of segments each lattice gap is split into for the limit and
// interior point sets.
const DefaultSubdivisions = 10

// Pattern is the geometry of a chessboard: its inner corner counts, square edge length, the lattice
// subdivision resolution and the grid refinement factor.
type Pattern struct {
	CountX       int     `json:"chess_num_x"`
	CountY       int     `json:"chess_num_y"`
	SquareSize   float64 `json:"square_size"`
	Subdivisions int     `json:"subdivisions"`
	Factor       int     `json:"factor"`
}

// NewPattern returns a pattern with the default subdivisions and no grid refinement.
func NewPattern(countX, countY int, squareSize float64) Pattern {
	return Pattern{
		CountX:       countX,
		CountY:       countY,
		SquareSize:   squareSize,
		Subdivisions: DefaultSubdivisions,
		Factor:       1,
	}
}

// PatternFromDataset reads the pattern a dataset was captured with.
func PatternFromDataset(cfg dataset.CalibrationPattern) (Pattern, error) {
	x, y, err := cfg.Corners()
	if err != nil {
		return Pattern{}, err
	}
	p := NewPattern(x, y, cfg.Size)
	return p, p.Validate()
}

// Validate returns every problem with the pattern.
func (p Pattern) Validate() error {
	var err error
	if p.CountX < 1 {
		err = multierr.Append(err, errors.Errorf("chess_num_x must be positive, got %d", p.CountX))
	}
	if p.CountY < 1 {
		err = multierr.Append(err, errors.Errorf("chess_num_y must be positive, got %d", p.CountY))
	}
	if !(p.SquareSize > 0) {
		err = multierr.Append(err, errors.Errorf("square_size must be positive, got %v", p.SquareSize))
	}
	if p.Subdivisions < 1 {
		err = multierr.Append(err, errors.Errorf("subdivisions must be positive, got %d", p.Subdivisions))
	}
	if p.Factor < 1 {
		err = multierr.Append(err, errors.Errorf("factor must be at least 1, got %d", p.Factor))
	}
	return err
}

// NumberCorners is the number of inner corners a full detection has.
func (p Pattern) NumberCorners() int {
	return p.CountX * p.CountY
}

// Nodes returns the evaluation grid size along x and y.
func (p Pattern) Nodes() (int, int) {
	return p.CountX * p.Factor, p.CountY * p.Factor
}

// Steps returns the evaluation grid spacing along x and y.
func (p Pattern) Steps() (float64, float64) {
	nx, ny := p.Nodes()
	return float64(p.CountX) * p.SquareSize / float64(nx), float64(p.CountY) * p.SquareSize / float64(ny)
}

// EvaluationCount is the number of evaluation points.
func (p Pattern) EvaluationCount() int {
	nx, ny := p.Nodes()
	return nx * ny
}

// LimitCount is the number of boundary points.
func (p Pattern) LimitCount() int {
	nx, ny := p.Nodes()
	n := p.Subdivisions
	return nx*2*n + ny*2*n + 4*n
}

// InteriorCount is the number of interior points.
func (p Pattern) InteriorCount() int {
	nx, ny := p.Nodes()
	n := p.Subdivisions
	return (nx-1)*(n-1)*ny + (ny-1)*(n-1)*nx + nx*ny
}
