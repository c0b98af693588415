package image

import (
	"image"
	"image/color"
	"measure-error/internal/measure"
	"runtime"
	"sync"
)

var (
	qualityErrorColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	maskedErrorColor  = color.RGBA{R: 255, G: 191, B: 0, A: 255}
)

// ToGrid converts img into a grid of premultiplied 16-bit pixels with its origin at (0,0).
func ToGrid(img image.Image) *measure.Grid[color.RGBA64] {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	grid := measure.NewGrid[color.RGBA64](width, height)

	// Use GOMAXPROCS instead of runtime.NumCPU() to consider cgroup.
	numWorkers := runtime.GOMAXPROCS(0)
	rowsPerWorker := height / numWorkers

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		startY := i * rowsPerWorker
		endY := startY + rowsPerWorker
		if i == numWorkers-1 {
			endY = height
		}

		go func(startY int, endY int) {
			defer wg.Done()
			for y := startY; y < endY; y++ {
				convertRow(img, bounds.Min.X, bounds.Min.Y+y, grid.Row(y))
			}
		}(startY, endY)
	}
	wg.Wait()

	return grid
}

func convertRow(img image.Image, minX int, y int, row []color.RGBA64) {
	switch src := img.(type) {
	case *image.RGBA:
		offset := src.PixOffset(minX, y)
		for x := range row {
			p := src.Pix[offset+x*4 : offset+x*4+4 : offset+x*4+4]
			row[x] = color.RGBA64{
				R: uint16(p[0]) * 0x101,
				G: uint16(p[1]) * 0x101,
				B: uint16(p[2]) * 0x101,
				A: uint16(p[3]) * 0x101,
			}
		}
	case *image.NRGBA:
		offset := src.PixOffset(minX, y)
		for x := range row {
			p := src.Pix[offset+x*4 : offset+x*4+4 : offset+x*4+4]
			row[x] = rgba64(color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]})
		}
	default:
		for x := range row {
			row[x] = rgba64(img.At(minX+x, y))
		}
	}
}

func rgba64(c color.Color) color.RGBA64 {
	r, g, b, a := c.RGBA()
	return color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: uint16(a)}
}

func checkBounds(op string, reference image.Image, work image.Image) error {
	r := reference.Bounds()
	w := work.Bounds()
	if r.Dx() != w.Dx() || r.Dy() != w.Dy() {
		return &measure.SizeMismatchError{
			Op: op,
			A:  measure.Shape{Width: w.Dx(), Height: w.Dy()},
			B:  measure.Shape{Width: r.Dx(), Height: r.Dy()},
		}
	}
	return nil
}

// highlight returns an RGBA copy of work to paint mismatches on.
func highlight(work *measure.Grid[color.RGBA64]) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, work.Width(), work.Height()))
	for y := 0; y < work.Height(); y++ {
		for x, p := range work.Row(y) {
			out.SetRGBA64(x, y, p)
		}
	}
	return out
}

func fraction(n int, shape measure.Shape) float64 {
	if shape.Size() == 0 {
		return 0.0
	}
	return float64(n) / float64(shape.Size())
}

// PixelDiff reports the raw mismatch count and marks every mismatch in red.
type PixelDiff struct{}

func NewPixelDiff() *PixelDiff {
	return &PixelDiff{}
}

func (p *PixelDiff) Calculate(reference image.Image, work image.Image) (*DiffResult, error) {
	if reference == work {
		return &DiffResult{Image: work}, nil
	}
	if err := checkBounds("pixel diff", reference, work); err != nil {
		return nil, err
	}

	workGrid := ToGrid(work)
	mismatches, err := measure.FindMismatches(workGrid, ToGrid(reference))
	if err != nil {
		return nil, err
	}

	diff := highlight(workGrid)
	for _, c := range mismatches {
		diff.SetRGBA(c.X, c.Y, qualityErrorColor)
	}

	return &DiffResult{
		Image:       diff,
		TotalErrors: len(mismatches),
		DiffAmount:  fraction(len(mismatches), workGrid.Shape()),
	}, nil
}
