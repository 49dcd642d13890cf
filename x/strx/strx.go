package strx

// Coalesce returns the first value that is not the zero value of T, or the
// zero value when all are.
func Coalesce[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
