package pearch

import (
	"time"
)

// Poll bounds in seconds.
const (
	DefaultMaxWaitSeconds  = 600
	DefaultIntervalSeconds = 15

	MinMaxWaitSeconds  = 10
	MaxMaxWaitSeconds  = 3600
	MinIntervalSeconds = 2
	MaxIntervalSeconds = 60
)

// PollConfig controls how long and how often a task is polled.
type PollConfig struct {
	// MaxWait is the deadline measured from the start of polling.
	MaxWait time.Duration
	// Interval is the delay between status checks.
	Interval time.Duration
}

type pollSeconds struct {
	MaxWait  int `json:"maxWaitTime" validate:"min=10,max=3600"`
	Interval int `json:"pollingInterval" validate:"min=2,max=60"`
}

// DefaultPollConfig returns a 600 second deadline polled every 15 seconds.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		MaxWait:  DefaultMaxWaitSeconds * time.Second,
		Interval: DefaultIntervalSeconds * time.Second,
	}
}

// NewPollConfig builds a [PollConfig] from whole seconds.
//
// Zero selects the default for that field. Otherwise maxWaitSeconds must
// be in [10, 3600] and intervalSeconds in [2, 60].
func NewPollConfig(maxWaitSeconds, intervalSeconds int) (PollConfig, error) {
	if maxWaitSeconds == 0 {
		maxWaitSeconds = DefaultMaxWaitSeconds
	}
	if intervalSeconds == 0 {
		intervalSeconds = DefaultIntervalSeconds
	}
	s := pollSeconds{MaxWait: maxWaitSeconds, Interval: intervalSeconds}
	if err := validationError(validate.Struct(s)); err != nil {
		return PollConfig{}, err
	}
	return PollConfig{
		MaxWait:  time.Duration(maxWaitSeconds) * time.Second,
		Interval: time.Duration(intervalSeconds) * time.Second,
	}, nil
}

// PollConfig derives the poll settings from p.
func (p Params) PollConfig() (PollConfig, error) {
	return NewPollConfig(p.MaxWaitTime, p.PollingInterval)
}

// withDefaults fills non-positive fields from [DefaultPollConfig]. Durations
// set directly are not range checked.
func (c PollConfig) withDefaults() PollConfig {
	d := DefaultPollConfig()
	if c.MaxWait <= 0 {
		c.MaxWait = d.MaxWait
	}
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	return c
}
