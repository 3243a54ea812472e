// Package grpc provides gRPC server interceptors for JWT authentication and
// role-based authorization.
//
// Both interceptors read a bearer token from the "authorization" metadata,
// verify it, place the principal in the context and then check the policy
// declared for the called method.
//
// # Basic Usage
//
//	import (
//	    jwtgrpc "github.com/kumuluz/go-jwt-auth/integrations/grpc"
//	    "github.com/kumuluz/go-jwt-auth/authz"
//	    "google.golang.org/grpc"
//	)
//
//	interceptor, err := jwtgrpc.New(
//	    jwtgrpc.WithValidator(v),
//	    jwtgrpc.WithServicePolicy("orders.Orders", authz.Roles("user")),
//	    jwtgrpc.WithMethodPolicy("/orders.Orders/Delete", authz.Roles("admin")),
//	    jwtgrpc.WithExcludedMethods("/grpc.health.v1.Health/Check"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	)
//
// In a handler:
//
//	func (s *server) Delete(ctx context.Context, req *pb.DeleteRequest) (*pb.DeleteResponse, error) {
//	    p := jwtgrpc.MustGetPrincipal(ctx)
//	    log.Printf("%s deletes %s", p.Name(), req.Id)
//	    ...
//	}
//
// # Status Codes
//
// DefaultErrorHandler returns Unauthenticated for missing or invalid tokens
// and for anonymous callers of role-guarded methods, PermissionDenied when no
// role matches, and Internal when the server cannot check tokens.
//
// # Credentials
//
// Calls without a token proceed without a principal by default; methods with
// no declared policy stay open to them. Use WithCredentialsOptional(false) to
// reject them up front.
package grpc
