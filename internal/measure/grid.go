package measure

import (
	"fmt"

	"golang.org/x/xerrors"
)

var ErrRaggedRows = xerrors.New("rows must all have the same length")

type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

type Shape struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

func (s Shape) Size() int {
	return s.Width * s.Height
}

// Grid is a row-major image of comparable pixel values.
type Grid[T comparable] struct {
	width  int
	height int
	pix    []T
}

func NewGrid[T comparable](width int, height int) *Grid[T] {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Grid[T]{
		width:  width,
		height: height,
		pix:    make([]T, width*height),
	}
}

// FromRows copies rows[y][x] into a new grid.
func FromRows[T comparable](rows [][]T) (*Grid[T], error) {
	if len(rows) == 0 {
		return NewGrid[T](0, 0), nil
	}

	g := NewGrid[T](len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != g.width {
			return nil, xerrors.Errorf("row %d has %d values, want %d: %w", y, len(row), g.width, ErrRaggedRows)
		}
		copy(g.pix[y*g.width:(y+1)*g.width], row)
	}
	return g, nil
}

func (g *Grid[T]) Width() int {
	return g.width
}

func (g *Grid[T]) Height() int {
	return g.height
}

func (g *Grid[T]) Shape() Shape {
	return Shape{Width: g.width, Height: g.height}
}

// Size is the total number of pixels.
func (g *Grid[T]) Size() int {
	return len(g.pix)
}

func (g *Grid[T]) Contains(c Coordinate) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

func (g *Grid[T]) At(c Coordinate) T {
	return g.pix[g.offset(c)]
}

func (g *Grid[T]) Set(c Coordinate, v T) {
	g.pix[g.offset(c)] = v
}

// Row returns the backing slice of row y. Writes through it are visible in the grid.
func (g *Grid[T]) Row(y int) []T {
	return g.pix[y*g.width : (y+1)*g.width]
}

// NeighborValues returns the values of the in-bounds Moore neighbors of c.
func (g *Grid[T]) NeighborValues(c Coordinate) []T {
	offsets := NeighborsOf(c, g.width, g.height)
	values := make([]T, 0, len(offsets))
	for _, o := range offsets {
		values = append(values, g.At(o.From(c)))
	}
	return values
}

func (g *Grid[T]) offset(c Coordinate) int {
	if !g.Contains(c) {
		panic(fmt.Sprintf("measure: coordinate %s outside %s grid", c, g.Shape()))
	}
	return c.Y*g.width + c.X
}

func (g *Grid[T]) coordinate(i int) Coordinate {
	return Coordinate{X: i % g.width, Y: i / g.width}
}
