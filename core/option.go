package core

import (
	"errors"
)

// Option is a function that configures the Core.
// Options return errors to enable validation during construction.
type Option func(*Core) error

// New creates a new Core instance with the provided options.
//
// The Core must be configured with a Validator using WithValidator.
// All other options are optional.
//
// Example:
//
//	core, err := core.New(
//	    core.WithValidator(validator),
//	    core.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Core, error) {
	c := &Core{
		// Requests without a token proceed unauthenticated; role policies
		// then answer with 401.
		credentialsOptional: true,
	}

	// Apply all options
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	// Validate required configuration
	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate ensures all required fields are set.
func (c *Core) validate() error {
	if c.validator == nil {
		return NewValidationError(
			ErrorCodeValidatorNotSet,
			"validator is required but not set (use WithValidator option)",
			nil,
		)
	}
	return nil
}

// WithValidator sets the validator for the Core.
// This is a required option.
func WithValidator(validator Validator) Option {
	return func(c *Core) error {
		if validator == nil {
			return errors.New("validator cannot be nil")
		}
		c.validator = validator
		return nil
	}
}

// WithCredentialsOptional configures whether credentials are optional.
//
// When set to true (default), requests without tokens proceed without a
// principal and endpoint policies decide whether that is acceptable.
//
// When set to false, requests without tokens fail with ErrJWTMissing.
func WithCredentialsOptional(optional bool) Option {
	return func(c *Core) error {
		c.credentialsOptional = optional
		return nil
	}
}

// WithLogger sets an optional logger for the Core.
//
// When configured, the Core will log debug information about token
// validation success/failure, authorization decisions and timing.
//
// Example:
//
//	logger := slog.Default()
//	core, _ := core.New(
//	    core.WithValidator(validator),
//	    core.WithLogger(logger),
//	)
func WithLogger(logger Logger) Option {
	return func(c *Core) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics sets the sink for verification and authorization metrics.
func WithMetrics(metrics Metrics) Option {
	return func(c *Core) error {
		if metrics == nil {
			return errors.New("metrics cannot be nil")
		}
		c.metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer used to wrap token verification in a span.
func WithTracer(tracer Tracer) Option {
	return func(c *Core) error {
		if tracer == nil {
			return errors.New("tracer cannot be nil")
		}
		c.tracer = tracer
		return nil
	}
}
