package measure_test

import (
	"errors"
	"fmt"
	"math/rand"
	"measure-error/internal/measure"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestFindMismatches(t *testing.T) {
	type in struct {
		first  [][]int
		second [][]int
	}

	type want struct {
		first []measure.Coordinate
		total int
	}

	tests := []struct {
		name string
		in   in
		want want
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				[][]int{
					{0, 0, 0},
					{0, 1, 0},
					{0, 0, 0},
				},
				[][]int{
					{0, 0, 0},
					{0, 0, 0},
					{0, 0, 0},
				},
			},
			want{
				[]measure.Coordinate{{X: 1, Y: 1}},
				1,
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				[][]int{
					{1, 0},
					{0, 0},
				},
				[][]int{
					{0, 0},
					{0, 0},
				},
			},
			want{
				[]measure.Coordinate{{X: 0, Y: 0}},
				1,
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				[][]int{
					{1, 2, 3, 4},
					{5, 6, 7, 8},
				},
				[][]int{
					{1, 0, 3, 0},
					{0, 6, 7, 8},
				},
			},
			want{
				[]measure.Coordinate{{X: 1, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: 1}},
				3,
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				[][]int{
					{4, 4},
				},
				[][]int{
					{4, 4},
				},
			},
			want{
				nil,
				0,
			},
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			a := mustGrid(t, in.first)
			b := mustGrid(t, in.second)

			got, err := measure.FindMismatches(a, b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(want.first, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}

			total, err := measure.TotalError(a, b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(want.total, total); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

// Only the pixel count matters for raw mismatches; coordinates follow the first grid.
func TestFindMismatchesSameSizeDifferentShape(t *testing.T) {
	a := mustGrid(t, [][]int{
		{1, 2, 3},
		{4, 5, 6},
	})
	b := mustGrid(t, [][]int{
		{1, 2},
		{3, 0},
		{5, 6},
	})

	got, err := measure.FindMismatches(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]measure.Coordinate{{X: 0, Y: 1}}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestTotalErrorSizeMismatch(t *testing.T) {
	a := measure.NewGrid[int](3, 3)
	b := measure.NewGrid[int](4, 2)

	if _, err := measure.TotalError(a, b); !errors.Is(err, measure.ErrSizeMismatch) {
		t.Errorf("expected size mismatch, got %v", err)
	}
	if _, err := measure.FindMismatches(a, b); !errors.Is(err, measure.ErrSizeMismatch) {
		t.Errorf("expected size mismatch, got %v", err)
	}
}

func TestTotalErrorProperties(t *testing.T) {
	r := rand.New(rand.NewSource(2))

	for i := 0; i < 100; i++ {
		a := randomGrid(r, 1+r.Intn(10), 1+r.Intn(10), 4)
		b := randomGrid(r, a.Width(), a.Height(), 4)

		mismatches, err := measure.FindMismatches(a, b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		total, err := measure.TotalError(a, b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != len(mismatches) {
			t.Errorf("total error %d differs from %d mismatches", total, len(mismatches))
		}

		identity, err := measure.TotalError(a, a)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity != 0 {
			t.Errorf("total error of an image with itself is %d", identity)
		}
	}
}
