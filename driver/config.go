package driver

import (
	"time"

	"github.com/kbukum/routekit/validation"
)

// Idle wait modes.
const (
	ModePoll   = "poll"
	ModeNotify = "notify"
)

// Stepping strategies.
const (
	StrategyConcurrent  = "concurrent"
	StrategyMultiplexed = "multiplexed"
)

// Error policies.
const (
	OnErrorAbort = "abort"
	// OnErrorSkip keeps stepping after non-fatal errors such as
	// PREDICATE_FAILED. Fatal errors still abort the run.
	OnErrorSkip = "skip"
)

// DefaultPollInterval is used when no poll interval is configured.
const DefaultPollInterval = time.Millisecond

// Config configures a Scheduler.
type Config struct {
	Mode         string        `yaml:"mode" mapstructure:"mode" validate:"required,oneof=poll notify"`
	Strategy     string        `yaml:"strategy" mapstructure:"strategy" validate:"required,oneof=concurrent multiplexed"`
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval" validate:"gt=0"`
	OnError      string        `yaml:"on_error" mapstructure:"on_error" validate:"required,oneof=abort skip"`
	// StepLogging logs node failures and shutdowns as they happen.
	StepLogging bool `yaml:"step_logging" mapstructure:"step_logging"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeNotify
	}
	if c.Strategy == "" {
		c.Strategy = StrategyConcurrent
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.OnError == "" {
		c.OnError = OnErrorAbort
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c)
}
