package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/spinsim/internal/dynamo"
)

// Point is one sample of a phase portrait.
type Point struct{ X, Y float64 }

// PhasePortrait holds two trajectory components plotted against each other.
// For a spinning vehicle the (wx, wy) plane shows the nutation circle.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []Point
}

// NewPhasePortrait extracts the (xIdx, yIdx) plane from a trajectory.
func NewPhasePortrait(tr *dynamo.Trajectory, xIdx, yIdx int) (*PhasePortrait, error) {
	if tr == nil || tr.Len() == 0 {
		return nil, fmt.Errorf("%w: empty trajectory", dynamo.ErrInvalidInput)
	}
	dim := len(tr.States[0])
	if xIdx < 0 || yIdx < 0 || xIdx >= dim || yIdx >= dim {
		return nil, fmt.Errorf("%w: component index out of range [0, %d)", dynamo.ErrInvalidInput, dim)
	}

	portrait := &PhasePortrait{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, tr.Len()),
	}
	for _, x := range tr.States {
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}
	return portrait, nil
}

// Extent is the largest absolute coordinate in the portrait. For the
// transverse rates it bounds the nutation circle.
func (p *PhasePortrait) Extent() float64 {
	var r float64
	for _, pt := range p.Points {
		r = math.Max(r, math.Max(math.Abs(pt.X), math.Abs(pt.Y)))
	}
	return r
}

// ASCII renders the portrait on a width×height character grid centred on
// the origin, with both axes on the same scale so circles stay round in
// value space.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	r := p.Extent() * 1.1
	if r == 0 {
		r = 1
	}
	midCol, midRow := (width-1)/2, (height-1)/2
	at := func(x, y float64) (int, int) {
		col := midCol + int(math.Round(x/r*float64(midCol)))
		row := midRow - int(math.Round(y/r*float64(midRow)))
		return row, col
	}

	grid := make([][]rune, height)
	for row := range grid {
		grid[row] = make([]rune, width)
		for col := range grid[row] {
			switch {
			case row == midRow && col == midCol:
				grid[row][col] = '┼'
			case row == midRow:
				grid[row][col] = '─'
			case col == midCol:
				grid[row][col] = '│'
			default:
				grid[row][col] = ' '
			}
		}
	}

	for _, pt := range p.Points {
		row, col := at(pt.X, pt.Y)
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
