package resolver

import "time"

// Config tunes resolution.
type Config struct {
	// Target is the number of questions a full resolution returns.
	Target int

	// MinViable is the smallest pool the generative tier may return.
	// Below it generation counts as failed.
	MinViable int

	// RemoteCandidates caps how many questions are read from the
	// shared repository.
	RemoteCandidates int

	// SourceTimeout bounds each call to a remote or generative source.
	SourceTimeout time.Duration
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		Target:           10,
		MinViable:        5,
		RemoteCandidates: 30,
		SourceTimeout:    10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Target <= 0 {
		c.Target = def.Target
	}
	if c.MinViable <= 0 || c.MinViable > c.Target {
		c.MinViable = min(def.MinViable, c.Target)
	}
	if c.RemoteCandidates <= 0 {
		c.RemoteCandidates = def.RemoteCandidates
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = def.SourceTimeout
	}
	return c
}
