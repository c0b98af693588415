package measure

// FindMismatches returns every coordinate at which a and b differ, in row-major order.
//
// Only the total pixel count of the two grids has to agree. Storage is walked in lockstep and
// coordinates are reported in the geometry of a.
func FindMismatches[T comparable](a *Grid[T], b *Grid[T]) ([]Coordinate, error) {
	if err := checkSize("find mismatches", a, b); err != nil {
		return nil, err
	}

	var mismatches []Coordinate
	for i := range a.pix {
		if a.pix[i] != b.pix[i] {
			mismatches = append(mismatches, a.coordinate(i))
		}
	}
	return mismatches, nil
}

// TotalError is the unfiltered number of mismatched pixels.
func TotalError[T comparable](a *Grid[T], b *Grid[T]) (int, error) {
	mismatches, err := FindMismatches(a, b)
	if err != nil {
		return 0, err
	}
	return len(mismatches), nil
}
