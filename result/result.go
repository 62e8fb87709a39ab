// Package result provides a two-branch value: either a Left (by convention
// the failure) or a Right (the success).
//
// A Result is a plain value with no hidden state, so two Results built from
// equal inputs are equal.
package result

import "fmt"

// Result holds exactly one of a Left or a Right value.
// The zero Result is a Left holding the zero L.
type Result[L, R any] struct {
	left    L
	right   R
	isRight bool
}

// Left returns a Result holding l.
func Left[L, R any](l L) Result[L, R] {
	return Result[L, R]{left: l}
}

// Right returns a Result holding r.
func Right[L, R any](r R) Result[L, R] {
	return Result[L, R]{right: r, isRight: true}
}

// IsLeft reports whether r holds a Left value.
func (r Result[L, R]) IsLeft() bool { return !r.isRight }

// IsRight reports whether r holds a Right value.
func (r Result[L, R]) IsRight() bool { return r.isRight }

// Left returns the Left value and true, or the zero L and false.
func (r Result[L, R]) Left() (L, bool) {
	if r.isRight {
		var zero L
		return zero, false
	}
	return r.left, true
}

// Right returns the Right value and true, or the zero R and false.
func (r Result[L, R]) Right() (R, bool) {
	if !r.isRight {
		var zero R
		return zero, false
	}
	return r.right, true
}

// RightOr returns the Right value, or def if r holds a Left.
func (r Result[L, R]) RightOr(def R) R {
	if !r.isRight {
		return def
	}
	return r.right
}

// String implements fmt.Stringer.
func (r Result[L, R]) String() string {
	if r.isRight {
		return fmt.Sprintf("Right(%v)", r.right)
	}
	return fmt.Sprintf("Left(%v)", r.left)
}

// Fold reduces r to a single value by applying onLeft or onRight.
func Fold[L, R, T any](r Result[L, R], onLeft func(L) T, onRight func(R) T) T {
	if r.isRight {
		return onRight(r.right)
	}
	return onLeft(r.left)
}

// Map transforms the Right value of r, leaving a Left untouched.
func Map[L, R, T any](r Result[L, R], f func(R) T) Result[L, T] {
	if r.isRight {
		return Right[L](f(r.right))
	}
	return Left[L, T](r.left)
}

// MapLeft transforms the Left value of r, leaving a Right untouched.
func MapLeft[L, R, T any](r Result[L, R], f func(L) T) Result[T, R] {
	if r.isRight {
		return Right[T](r.right)
	}
	return Left[T, R](f(r.left))
}
