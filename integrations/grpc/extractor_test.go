package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func TestMetadataTokenExtractor(t *testing.T) {
	testCases := []struct {
		name      string
		ctx       context.Context
		wantToken string
		wantErr   error
	}{
		{name: "no metadata", ctx: context.Background()},
		{name: "no authorization", ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs("x", "y"))},
		{name: "bearer token", ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc")), wantToken: "abc"},
		{name: "lowercase scheme", ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "bearer abc")), wantToken: "abc"},
		{name: "missing token", ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer")), wantErr: ErrInvalidAuthFormat},
		{name: "too many parts", ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer a b")), wantErr: ErrInvalidAuthFormat},
		{name: "other scheme", ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic abc")), wantErr: ErrUnsupportedScheme},
		{name: "duplicate entries", ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer a", "authorization", "Bearer b")), wantErr: ErrMultipleAuthHeaders},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			token, err := MetadataTokenExtractor(testCase.ctx)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.wantToken, token)
		})
	}
}
