package grpc

import (
	"errors"

	"github.com/kumuluz/go-jwt-auth/authz"
	"github.com/kumuluz/go-jwt-auth/core"
)

// Option configures the JWT interceptor.
type Option func(*JWTInterceptor) error

// Logger defines an optional logging interface compatible with log/slog.
// This is the same interface used by core for consistent logging across the stack.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// coreBuilder helps build a core.Core with accumulated options.
type coreBuilder struct {
	validator           core.Validator
	credentialsOptional *bool
	logger              Logger
	metrics             core.Metrics
	tracer              core.Tracer
}

func (b *coreBuilder) build() (*core.Core, error) {
	if b.validator == nil {
		return nil, errors.New("validator is required")
	}

	opts := []core.Option{
		core.WithValidator(b.validator),
	}

	if b.credentialsOptional != nil {
		opts = append(opts, core.WithCredentialsOptional(*b.credentialsOptional))
	}
	if b.logger != nil {
		opts = append(opts, core.WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, core.WithMetrics(b.metrics))
	}
	if b.tracer != nil {
		opts = append(opts, core.WithTracer(b.tracer))
	}

	return core.New(opts...)
}

func (i *JWTInterceptor) builder() *coreBuilder {
	if i.coreBuilder == nil {
		i.coreBuilder = &coreBuilder{}
	}
	return i.coreBuilder
}

// WithValidator sets the JWT validator (REQUIRED). *validator.Validator
// satisfies core.Validator.
//
// Example:
//
//	interceptor, _ := grpc.New(
//	    grpc.WithValidator(v),
//	    grpc.WithLogger(logger),
//	    grpc.WithMethodPolicy("/orders.Orders/Delete", authz.Roles("admin")),
//	)
func WithValidator(v core.Validator) Option {
	return func(i *JWTInterceptor) error {
		if v == nil {
			return errors.New("validator cannot be nil")
		}
		i.builder().validator = v
		return nil
	}
}

// WithCredentialsOptional controls whether calls without a token proceed.
// When true, such calls continue without a principal and method policies
// decide whether that is acceptable.
//
// Default: true
func WithCredentialsOptional(optional bool) Option {
	return func(i *JWTInterceptor) error {
		i.builder().credentialsOptional = &optional
		return nil
	}
}

// WithLogger sets an optional logger for the interceptor.
// The logger will be used throughout the validation flow in both interceptor and core.
//
// The logger interface is compatible with log/slog.Logger and similar loggers.
func WithLogger(logger Logger) Option {
	return func(i *JWTInterceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.builder().logger = logger
		i.logger = logger // Set on interceptor for its own logging
		return nil
	}
}

// WithMetrics sets where verification and authorization measurements go.
func WithMetrics(metrics core.Metrics) Option {
	return func(i *JWTInterceptor) error {
		if metrics == nil {
			return errors.New("metrics cannot be nil")
		}
		i.builder().metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer that wraps each token check in a span.
func WithTracer(tracer core.Tracer) Option {
	return func(i *JWTInterceptor) error {
		if tracer == nil {
			return errors.New("tracer cannot be nil")
		}
		i.builder().tracer = tracer
		return nil
	}
}

// WithTokenExtractor sets a custom token extractor function.
// Default is MetadataTokenExtractor which extracts from "authorization" metadata.
func WithTokenExtractor(extractor TokenExtractor) Option {
	return func(i *JWTInterceptor) error {
		if extractor == nil {
			return errors.New("token extractor cannot be nil")
		}
		i.tokenExtractor = extractor
		return nil
	}
}

// WithErrorHandler sets a custom error handler function.
// Default is DefaultErrorHandler which maps errors to gRPC status codes.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(i *JWTInterceptor) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		i.errorHandler = handler
		return nil
	}
}

// WithExcludedMethods excludes specific gRPC methods from JWT validation and
// policy checks.
// Methods should be provided in the format: "/package.Service/Method"
// Example: "/myapp.MyService/PublicMethod", "/grpc.health.v1.Health/Check"
func WithExcludedMethods(methods ...string) Option {
	return func(i *JWTInterceptor) error {
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}

// WithMethodPolicy guards fullMethod ("/package.Service/Method") with policy.
func WithMethodPolicy(fullMethod string, policy authz.Policy) Option {
	return func(i *JWTInterceptor) error {
		if fullMethod == "" {
			return errors.New("method name cannot be empty")
		}
		i.methodPolicies[fullMethod] = policy
		return nil
	}
}

// WithServicePolicy guards every method of service ("package.Service") with
// policy. A method policy takes precedence when it is declared.
func WithServicePolicy(service string, policy authz.Policy) Option {
	return func(i *JWTInterceptor) error {
		if service == "" {
			return errors.New("service name cannot be empty")
		}
		i.servicePolicies[service] = policy
		return nil
	}
}
