package matchmaker

import "go.uber.org/zap"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	driver     string
	addrs      []string
	password   string
	dimensions int
	extractor  Extractor
	weights    *Weights
	logger     *zap.Logger
}

// WithRedis connects to a Redis server.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithValkey connects to a Valkey server.
func WithValkey(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithDimensions sets the taste vector length of the built-in hash extractor.
func WithDimensions(n int) Option {
	return func(c *clientConfig) {
		c.dimensions = n
	}
}

// WithExtractor replaces the built-in hash extractor.
func WithExtractor(e Extractor) Option {
	return func(c *clientConfig) {
		c.extractor = e
	}
}

// WithWeights overrides the score term weights.
func WithWeights(w Weights) Option {
	return func(c *clientConfig) {
		c.weights = &w
	}
}

// WithLogger sets the logger used for candidate demotions and fallbacks.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
