// Package sampling reduces long telemetry series for compact charts and
// computes heart-rate extrema that ignore sensor warm-up.
package sampling

// Defaults used when callers do not configure their own.
const (
	DefaultCompactPoints = 50
	DefaultWarmup        = 9
)

// Stride returns max(1, floor(n/target)). A non-positive target yields 1.
func Stride(n, target int) int {
	if target <= 0 {
		return 1
	}
	if s := n / target; s > 1 {
		return s
	}
	return 1
}

// Sample takes indices 0, stride, 2*stride, ... of xs. The result holds at
// most ceil(len(xs)/stride) values and is a new slice.
func Sample[T any](xs []T, stride int) []T {
	if stride < 1 {
		stride = 1
	}
	out := make([]T, 0, (len(xs)+stride-1)/stride)
	for i := 0; i < len(xs); i += stride {
		out = append(out, xs[i])
	}
	return out
}

// Compact samples xs down to roughly target points.
func Compact[T any](xs []T, target int) []T {
	return Sample(xs, Stride(len(xs), target))
}

// Valid keeps heart-rate samples that are present and positive.
func Valid(hr []*float64) []float64 {
	out := make([]float64, 0, len(hr))
	for _, v := range hr {
		if v != nil && *v > 0 {
			out = append(out, *v)
		}
	}
	return out
}

// RobustExtrema returns the min and max of the valid heart-rate samples
// after discarding the first warmup valid ones. When no samples remain after
// the warm-up window, all valid samples are used. No valid samples gives
// (0, 0).
func RobustExtrema(hr []*float64, warmup int) (lo, hi float64) {
	valid := Valid(hr)
	if len(valid) == 0 {
		return 0, 0
	}
	window := valid
	if warmup > 0 && len(valid) > warmup {
		window = valid[warmup:]
	}
	return MinMax(window)
}

// MinMax returns the extrema of a non-empty slice, (0, 0) for an empty one.
func MinMax(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
