package dataset

import (
	"github.com/pkg/errors"

	"go.viam.com/calibeval/utils"
)

// Chessboards is the resolved pattern document: the pattern geometry, the root-frame pose of the pattern
// in every collection, and the lattice point sets as 4xN homogeneous rows.
type Chessboards struct {
	ChessNumX     int                  `json:"chess_num_x"`
	ChessNumY     int                  `json:"chess_num_y"`
	NumberCorners int                  `json:"number_corners"`
	SquareSize    float64              `json:"square_size"`
	Collections   map[string]Transform `json:"collections"`

	Points  [][]float64 `json:"points,omitempty"`
	LPoints [][]float64 `json:"l_points,omitempty"`
	IPoints [][]float64 `json:"i_points,omitempty"`
}

// NewChessboards returns a document for a countX by countY pattern with no collections.
func NewChessboards(countX, countY int, squareSize float64) *Chessboards {
	return &Chessboards{
		ChessNumX:     countX,
		ChessNumY:     countY,
		NumberCorners: countX * countY,
		SquareSize:    squareSize,
		Collections:   map[string]Transform{},
	}
}

// WriteChessboards writes the document as JSON.
func WriteChessboards(path string, c *Chessboards) error {
	return utils.WriteJSONFile(path, c)
}

// ReadChessboards reads a document written by WriteChessboards.
func ReadChessboards(path string) (*Chessboards, error) {
	c := &Chessboards{}
	if err := utils.ReadJSONFile(path, c); err != nil {
		return nil, errors.Wrap(err, "error reading chessboards file")
	}
	return c, nil
}
