package config

import (
	"fmt"
	"strings"

	"github.com/shinji-kodama/ferium-companion/internal/model"
)

// ValidationError is a single problem found in a resolved Config.
type ValidationError struct {
	// Field is the config key that failed validation (e.g., "profileRepo.owner").
	Field string

	// Message describes what's wrong with the value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// Validate checks a resolved configuration and returns every problem it
// finds. An empty slice means the configuration is usable.
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(cfg.Tool) == "" {
		errs = append(errs, ValidationError{
			Field:   "tool",
			Message: "tool must name an executable",
		})
	}

	if !cfg.Runner.IsValid() {
		errs = append(errs, ValidationError{
			Field:   "runner",
			Message: fmt.Sprintf("unknown runner %q (valid: local, docker)", cfg.Runner),
		})
	}

	if cfg.Runner == model.RunnerLocal && cfg.Container != "" {
		errs = append(errs, ValidationError{
			Field:   "container",
			Message: "container is only used with the docker runner",
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "timeout",
			Message: "timeout must not be negative",
		})
	}

	if strings.TrimSpace(cfg.ProfileDir) == "" {
		errs = append(errs, ValidationError{
			Field:   "profileDir",
			Message: "profileDir must not be empty",
		})
	}

	if cfg.ProfileRepo.Owner == "" {
		errs = append(errs, ValidationError{
			Field:   "profileRepo.owner",
			Message: "owner is required",
		})
	}
	if cfg.ProfileRepo.Repo == "" {
		errs = append(errs, ValidationError{
			Field:   "profileRepo.repo",
			Message: "repo is required",
		})
	}

	return errs
}
