package retry

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"golang.org/x/exp/constraints"
)

type Backoff interface {
	// Delay returns the wait before retry number attempt, counted from zero,
	// and false once no retry is left.
	Delay(attempt uint) (time.Duration, bool)
}

type never struct{}

func Never() Backoff {
	return never{}
}

func (never) Delay(uint) (time.Duration, bool) {
	return 0, false
}

// Jitter maps a delay in nanoseconds to the delay actually slept.
type Jitter func(int64) int64

type exponential struct {
	base    time.Duration
	max     time.Duration
	retries uint
	jitter  Jitter
}

// NewExponential doubles base per attempt up to max, for at most retries
// retries. A nil jitter picks uniformly from [0, delay).
func NewExponential(base time.Duration, max time.Duration, retries uint, jitter Jitter) Backoff {
	return &exponential{
		base:    base,
		max:     max,
		retries: retries,
		jitter:  jitter,
	}
}

func (e *exponential) Delay(attempt uint) (time.Duration, bool) {
	if attempt >= e.retries {
		return 0, false
	}

	ceiling := clamp(int64(e.max), 0, math.MaxInt64)
	delay := ceiling
	if attempt < 63 {
		if d, err := checkedMulInt64(int64(1)<<attempt, clamp(int64(e.base), 0, math.MaxInt64)); err == nil {
			delay = clamp(d, 0, ceiling)
		}
	}
	return time.Duration(e.applyJitter(delay)), true
}

func (e *exponential) applyJitter(delay int64) int64 {
	if e.jitter != nil {
		return e.jitter(delay)
	}
	if delay <= 0 {
		return 0
	}
	return rand.Int63n(delay)
}

func clamp[T constraints.Ordered](v T, lo T, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var ErrOverflow = errors.New("overflow")

func checkedMulInt64(l int64, r int64) (int64, error) {
	if l == 0 || r == 0 {
		return 0, nil
	}
	if l > math.MaxInt64/r {
		return 0, ErrOverflow
	}
	return l * r, nil
}
