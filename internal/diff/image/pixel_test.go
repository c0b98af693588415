package image

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"measure-error/internal/measure"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func TestToGrid(t *testing.T) {
	t.Run("RGBA", func(t *testing.T) {
		img := createTestImage(3, 2, color.White)
		img.Set(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

		grid := ToGrid(img)

		if diff := cmp.Diff(measure.Shape{Width: 3, Height: 2}, grid.Shape()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		want := rgba64(color.RGBA{R: 10, G: 20, B: 30, A: 255})
		if diff := cmp.Diff(want, grid.At(measure.Coordinate{X: 2, Y: 1})); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("NRGBAMatchesGeneric", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 60), B: 7, A: uint8(64*(x+1) - 1)})
			}
		}

		grid := ToGrid(img)
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				if got, want := grid.At(measure.Coordinate{X: x, Y: y}), rgba64(img.At(x, y)); got != want {
					t.Errorf("(%d,%d): got %v, want %v", x, y, got, want)
				}
			}
		}
	})

	t.Run("OffsetBounds", func(t *testing.T) {
		img := image.NewGray(image.Rect(5, 5, 8, 7))
		img.SetGray(7, 6, color.Gray{Y: 200})

		grid := ToGrid(img)

		if diff := cmp.Diff(measure.Shape{Width: 3, Height: 2}, grid.Shape()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(rgba64(color.Gray{Y: 200}), grid.At(measure.Coordinate{X: 2, Y: 1})); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
}

func TestPixelDiff_Calculate(t *testing.T) {
	pd := NewPixelDiff()

	t.Run("NoDifference", func(t *testing.T) {
		img1 := createTestImage(100, 100, color.White)
		img2 := createTestImage(100, 100, color.White)

		result, err := pd.Calculate(img1, img2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.TotalErrors != 0 {
			t.Errorf("Expected TotalErrors to be 0, got %d", result.TotalErrors)
		}
		if result.DiffAmount != 0.0 {
			t.Errorf("Expected DiffAmount to be 0.0, got %f", result.DiffAmount)
		}
	})

	t.Run("CompleteDifference", func(t *testing.T) {
		img1 := createTestImage(100, 100, color.White)
		img2 := createTestImage(100, 100, color.Black)

		result, err := pd.Calculate(img1, img2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.TotalErrors != 100*100 {
			t.Errorf("Expected TotalErrors to be 10000, got %d", result.TotalErrors)
		}
		if result.DiffAmount != 1.0 {
			t.Errorf("Expected DiffAmount to be 1.0, got %f", result.DiffAmount)
		}
	})

	t.Run("SinglePixel", func(t *testing.T) {
		reference := createTestImage(3, 3, color.Black)
		work := createTestImage(3, 3, color.Black)
		work.Set(2, 2, color.White)

		result, err := pd.Calculate(reference, work)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.TotalErrors != 1 {
			t.Errorf("Expected TotalErrors to be 1, got %d", result.TotalErrors)
		}
		if got := result.Image.At(2, 2); got != color.Color(qualityErrorColor) {
			t.Errorf("Expected mismatch to be painted red, got %v", got)
		}
		if got := rgba64(result.Image.At(0, 0)); got != rgba64(color.Black) {
			t.Errorf("Expected unchanged pixel to be copied, got %v", got)
		}
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		img1 := createTestImage(10, 10, color.White)
		img2 := createTestImage(10, 5, color.White)

		_, err := pd.Calculate(img1, img2)
		if !errors.Is(err, measure.ErrSizeMismatch) {
			t.Errorf("Expected size mismatch, got %v", err)
		}
	})

	t.Run("SameImageInstance", func(t *testing.T) {
		img := createTestImage(100, 100, color.White)

		result, err := pd.Calculate(img, img)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.DiffAmount != 0.0 {
			t.Errorf("Expected DiffAmount to be 0.0 for same image instance, got %f", result.DiffAmount)
		}
	})
}

func BenchmarkPixelDiff_Calculate_Small(b *testing.B) {
	pd := NewPixelDiff()
	img1 := createTestImage(1920, 1080, color.White)
	img2 := createTestImage(1920, 1080, color.White)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = pd.Calculate(img1, img2)
	}
}
