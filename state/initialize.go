package state

import (
	"time"
)

// newLocalEnv creates a new LocalEnv instance with default values. Logger and
// configuration are set when command line is parsed, Log stays nil until
// then so early errors are reported directly to stderr.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}
