package measure

import (
	"fmt"

	"golang.org/x/xerrors"
)

var ErrSizeMismatch = xerrors.New("images must be the same size")

// SizeMismatchError reports two images that cannot be compared. It unwraps to ErrSizeMismatch.
type SizeMismatchError struct {
	Op string
	A  Shape
	B  Shape
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s vs %s: %s", e.Op, e.A, e.B, ErrSizeMismatch)
}

func (e *SizeMismatchError) Unwrap() error {
	return ErrSizeMismatch
}

func checkSize[T comparable](op string, a *Grid[T], b *Grid[T]) error {
	if a.Size() != b.Size() {
		return &SizeMismatchError{Op: op, A: a.Shape(), B: b.Shape()}
	}
	return nil
}

func checkShape[T comparable](op string, a *Grid[T], b *Grid[T]) error {
	if a.Shape() != b.Shape() {
		return &SizeMismatchError{Op: op, A: a.Shape(), B: b.Shape()}
	}
	return nil
}
