package image

import (
	"image"
	"measure-error/internal/measure"
)

// QualityDiff reports mismatches that are not masked by at least threshold same-colored
// neighbors in the work image. Counted mismatches are painted red, masked ones amber.
type QualityDiff struct {
	threshold int
}

func NewQualityDiff(threshold int) *QualityDiff {
	return &QualityDiff{
		threshold,
	}
}

func (q *QualityDiff) Calculate(reference image.Image, work image.Image) (*DiffResult, error) {
	if reference == work {
		return &DiffResult{Image: work}, nil
	}
	if err := checkBounds("quality diff", reference, work); err != nil {
		return nil, err
	}

	workGrid := ToGrid(work)
	report, err := measure.Evaluate(workGrid, ToGrid(reference), q.threshold)
	if err != nil {
		return nil, err
	}

	diff := highlight(workGrid)
	for _, v := range report.Verdicts {
		c := maskedErrorColor
		if v.Counted {
			c = qualityErrorColor
		}
		diff.SetRGBA(v.Coordinate.X, v.Coordinate.Y, c)
	}

	return &DiffResult{
		Image:         diff,
		TotalErrors:   report.TotalErrors,
		QualityErrors: report.QualityErrors,
		DiffAmount:    fraction(report.QualityErrors, report.Shape),
		Report:        report,
	}, nil
}
