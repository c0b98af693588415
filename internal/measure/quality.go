package measure

// CountMatching counts the neighbors equal to value.
func CountMatching[T comparable](value T, neighbors []T) int {
	n := 0
	for _, v := range neighbors {
		if v == value {
			n++
		}
	}
	return n
}

// Verdict is the outcome for a single mismatched pixel.
type Verdict struct {
	Coordinate Coordinate `json:"coordinate"`
	Position   Position   `json:"position"`
	Neighbors  int        `json:"neighbors"`
	SameColor  int        `json:"sameColor"`
	// Counted is false when the wrong value is shared by at least threshold neighbors.
	Counted bool `json:"counted"`
}

type Report struct {
	Shape         Shape     `json:"shape"`
	Threshold     int       `json:"threshold"`
	Verdicts      []Verdict `json:"verdicts"`
	TotalErrors   int       `json:"totalErrors"`
	QualityErrors int       `json:"qualityErrors"`
}

// Evaluate judges every mismatch between work and ref.
//
// A mismatch is forgiven when at least threshold of its neighbors in work carry the same wrong
// value; otherwise it is a quality error. Both grids must have the same width and height.
func Evaluate[T comparable](work *Grid[T], ref *Grid[T], threshold int) (*Report, error) {
	if err := checkShape("quality error", work, ref); err != nil {
		return nil, err
	}

	mismatches, err := FindMismatches(work, ref)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Shape:       work.Shape(),
		Threshold:   threshold,
		Verdicts:    make([]Verdict, 0, len(mismatches)),
		TotalErrors: len(mismatches),
	}
	for _, c := range mismatches {
		neighbors := work.NeighborValues(c)
		same := CountMatching(work.At(c), neighbors)

		v := Verdict{
			Coordinate: c,
			Position:   Classify(c, work.width, work.height),
			Neighbors:  len(neighbors),
			SameColor:  same,
			Counted:    same < threshold,
		}
		if v.Counted {
			report.QualityErrors++
		}
		report.Verdicts = append(report.Verdicts, v)
	}

	return report, nil
}

// QualityError is the number of mismatches not masked by same-colored neighbors.
func QualityError[T comparable](work *Grid[T], ref *Grid[T], threshold int) (int, error) {
	report, err := Evaluate(work, ref, threshold)
	if err != nil {
		return 0, err
	}
	return report.QualityErrors, nil
}
