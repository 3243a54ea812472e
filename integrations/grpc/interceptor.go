package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"

	"github.com/kumuluz/go-jwt-auth/authz"
	"github.com/kumuluz/go-jwt-auth/core"
)

// JWTInterceptor authenticates gRPC calls with bearer tokens and enforces
// per-method role policies.
type JWTInterceptor struct {
	core            *core.Core
	tokenExtractor  TokenExtractor
	errorHandler    ErrorHandler
	excludedMethods map[string]bool
	methodPolicies  map[string]authz.Policy
	servicePolicies map[string]authz.Policy
	logger          Logger

	// Internal builder for accumulating core options
	coreBuilder *coreBuilder
}

// New creates a new gRPC JWT interceptor with the provided options.
// WithValidator option is required.
func New(opts ...Option) (*JWTInterceptor, error) {
	interceptor := &JWTInterceptor{
		tokenExtractor:  MetadataTokenExtractor,
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
		methodPolicies:  make(map[string]authz.Policy),
		servicePolicies: make(map[string]authz.Policy),
	}

	for _, opt := range opts {
		if err := opt(interceptor); err != nil {
			return nil, err
		}
	}

	if interceptor.coreBuilder == nil || interceptor.coreBuilder.validator == nil {
		return nil, errors.New("validator is required, use WithValidator option")
	}

	c, err := interceptor.coreBuilder.build()
	if err != nil {
		return nil, err
	}
	interceptor.core = c

	return interceptor, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that validates
// JWTs and enforces method policies. The principal is available to the
// handler through GetPrincipal.
func (i *JWTInterceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		// Check if method is excluded
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping JWT validation for excluded method",
					"method", info.FullMethod)
			}
			return handler(ctx, req)
		}

		validatedCtx, err := i.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(validatedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that
// validates JWTs and enforces method policies. The principal is available
// through the stream context.
func (i *JWTInterceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		// Check if method is excluded
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping JWT validation for excluded method",
					"method", info.FullMethod)
			}
			return handler(srv, ss)
		}

		validatedCtx, err := i.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedServerStream{
			ServerStream: ss,
			ctx:          validatedCtx,
		})
	}
}

// PolicyFor returns the policy guarding fullMethod: the method policy when
// declared, else the service policy, else the open policy.
func (i *JWTInterceptor) PolicyFor(fullMethod string) authz.Policy {
	method := i.methodPolicies[fullMethod]
	service := i.servicePolicies[serviceName(fullMethod)]
	return authz.Resolve(method, service)
}

// authenticate checks the token, then the method policy.
func (i *JWTInterceptor) authenticate(ctx context.Context, method string) (context.Context, error) {
	token, err := i.tokenExtractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("failed to extract token from gRPC metadata",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	p, err := i.core.CheckToken(ctx, token)
	if err != nil {
		return ctx, i.errorHandler(err)
	}

	if p != nil {
		ctx = core.SetPrincipal(ctx, p)
	} else if i.logger != nil {
		i.logger.Debug("no credentials provided, continuing without principal",
			"method", method)
	}

	switch i.core.Authorize(ctx, i.PolicyFor(method), p) {
	case authz.Allow:
		return ctx, nil
	case authz.DenyUnauthenticated:
		return ctx, i.errorHandler(ErrUnauthenticated)
	default:
		return ctx, i.errorHandler(ErrPermissionDenied)
	}
}

// serviceName returns "package.Service" for "/package.Service/Method".
func serviceName(fullMethod string) string {
	name := strings.TrimPrefix(fullMethod, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[:idx]
	}
	return ""
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context carrying the principal.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
