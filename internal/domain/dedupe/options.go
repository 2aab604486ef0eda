package dedupe

// Option applies a configuration option to a Tracker.
type Option func(*options)

type options struct {
	capacity  int
	normalize func(string) string
}

// WithCapacity preallocates room for n identifiers, typically the row count.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithNormalizer canonicalizes identifiers before comparison.
func WithNormalizer(fn func(string) string) Option {
	return func(o *options) {
		o.normalize = fn
	}
}
