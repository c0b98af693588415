package image

import (
	"image"
	"measure-error/internal/measure"
)

type DiffResult struct {
	Image         image.Image
	TotalErrors   int
	QualityErrors int
	// DiffAmount is the fraction of all pixels that the differ counts as errors.
	DiffAmount float64
	Report     *measure.Report
}

// Differ compares a work image against its reference. Both must have the same width and height.
type Differ interface {
	Calculate(reference image.Image, work image.Image) (*DiffResult, error)
}
