package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithSeed fixes the priority source so tree shapes are reproducible.
func WithSeed(seed int64) Option {
	return func(s *TreapStore) {
		s.seed = seed
	}
}
