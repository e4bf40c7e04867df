package temporal

import "golang.org/x/exp/constraints"

// checkedAdd returns a+b and false if the sum overflows T.
func checkedAdd[T constraints.Signed](a, b T) (T, bool) {
	c := a + b
	if (c > a) != (b > 0) {
		return c, false
	}
	return c, true
}

// checkedSub returns a-b and false if the difference overflows T.
func checkedSub[T constraints.Signed](a, b T) (T, bool) {
	c := a - b
	if (c < a) != (b > 0) {
		return c, false
	}
	return c, true
}

// checkedMul returns a*b and false if the product overflows T.
func checkedMul[T constraints.Signed](a, b T) (T, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	switch {
	case a == -1:
		return c, b != c || b == 0
	case b == -1:
		return c, a != c
	}
	return c, c/b == a
}

// floorDiv returns a/b rounded toward negative infinity. b must be positive.
func floorDiv[T constraints.Signed](a, b T) T {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

// floorMod returns the non-negative remainder of a/b. b must be positive.
func floorMod[T constraints.Signed](a, b T) T {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// abs returns the absolute value of n, which must not be the minimum value
// of its type.
func abs[T constraints.Signed](n T) T {
	if n < 0 {
		return -n
	}
	return n
}

// sign returns -1, 0, or +1.
func sign[T constraints.Signed](n T) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
