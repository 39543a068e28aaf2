// internal/workers/loan/predict-loan-approval/config.go
package predictloanapproval

import (
	"time"

	"loan-approval/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	c := &Config{
		Timeout:       config.GetDuration(wcfg.Timeout),
		MaxJobsActive: wcfg.MaxJobsActive,
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxJobsActive <= 0 {
		c.MaxJobsActive = 5
	}
	return c
}
