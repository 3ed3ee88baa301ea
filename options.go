package mapreduce

import "github.com/google/uuid"

// Option is a functional option for configuring jobs.
type Option func(*jobConfig)

type jobConfig struct {
	jobID     uuid.UUID
	bufferCap int // initial capacity of each per-worker intermediate buffer
}

func defaultJobConfig() *jobConfig {
	return &jobConfig{
		jobID: uuid.New(),
	}
}

// WithJobID sets the job identifier instead of generating a random one.
func WithJobID(id uuid.UUID) Option {
	return func(c *jobConfig) {
		c.jobID = id
	}
}

// WithBufferCapacity pre-reserves capacity in each worker's intermediate
// buffer. Useful when the expected number of intermediate pairs per worker
// is known, to avoid append growth during the map phase.
func WithBufferCapacity(n int) Option {
	return func(c *jobConfig) {
		if n > 0 {
			c.bufferCap = n
		}
	}
}
