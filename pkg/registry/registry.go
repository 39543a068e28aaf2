// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// DefaultPath is where the service looks for the registry at startup.
const DefaultPath = "configs/activity-registry.json"

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Validate checks that ids and task types are unique and that every
// activity has a known status and a parseable timeout.
func (r *ActivityRegistry) Validate() error {
	ids := make(map[string]bool, len(r.Activities))
	taskTypes := make(map[string]bool, len(r.Activities))

	for _, a := range r.Activities {
		if a.ID == "" || a.TaskType == "" {
			return fmt.Errorf("activity %q: id and taskType are required", a.ID)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity id %q", a.ID)
		}
		if taskTypes[a.TaskType] {
			return fmt.Errorf("duplicate task type %q", a.TaskType)
		}
		ids[a.ID] = true
		taskTypes[a.TaskType] = true

		if !knownStatuses[a.ImplementationStatus] {
			return fmt.Errorf("activity %q: unknown implementation status %q", a.ID, a.ImplementationStatus)
		}
		if _, err := a.TimeoutDuration(); err != nil {
			return fmt.Errorf("activity %q: %w", a.ID, err)
		}
		if a.Retries < 0 {
			return fmt.Errorf("activity %q: retries must not be negative", a.ID)
		}
	}
	return nil
}

// Runnable reports whether a worker may be started for the activity.
func (a *Activity) Runnable() bool {
	return a.ImplementationStatus == StatusCompleted || a.ImplementationStatus == StatusVerified
}

// TimeoutDuration parses Timeout. An empty timeout is zero.
func (a *Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", a.Timeout, err)
	}
	return d, nil
}

// HasErrorCode reports whether code is one of the BPMN errors the activity
// declares.
func (a *Activity) HasErrorCode(code string) bool {
	for _, c := range a.ErrorCodes {
		if c == code {
			return true
		}
	}
	return false
}
