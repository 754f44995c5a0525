package classifier

// Outcome carries a classification result. When Degraded is set, Value
// already holds the documented default and Cause explains why.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Cause    error
}

// Ok wraps a successful value
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Degrade returns the default value marked as degraded
func Degrade[T any](def T, cause error) Outcome[T] {
	return Outcome[T]{Value: def, Degraded: true, Cause: cause}
}
