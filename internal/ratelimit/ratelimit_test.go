package ratelimit_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenizelocal/tokenizelocal/internal/mocks"
	"github.com/tokenizelocal/tokenizelocal/internal/ratelimit"
)

func TestWrapHTTPClientDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	next := mocks.NewMockHTTPClient(ctrl)

	// Non-positive rates return the client unchanged
	assert.Equal(t, next, ratelimit.WrapHTTPClient(next, 0, 1))
	assert.Equal(t, next, ratelimit.WrapHTTPClient(next, -1, 1))
}

func TestWrapHTTPClientPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	next := mocks.NewMockHTTPClient(ctrl)
	next.EXPECT().
		Get(gomock.Any(), "https://api.checko.ru/v2/finances", gomock.Any()).
		Return(nil)

	client := ratelimit.WrapHTTPClient(next, 100, 1)

	var result struct{}
	err := client.Get(context.Background(), "https://api.checko.ru/v2/finances", &result)
	require.NoError(t, err)
}

func TestWrapHTTPClientHonorsCancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	next := mocks.NewMockHTTPClient(ctrl)
	client := ratelimit.WrapHTTPClient(next, 0.001, 1)

	ctx, cancel := context.WithCancel(context.Background())

	// Drain the single burst token, then a cancelled wait must fail without
	// reaching the wrapped client
	next.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	var result struct{}
	require.NoError(t, client.Get(ctx, "first", &result))

	cancel()
	err := client.Get(ctx, "second", &result)
	require.Error(t, err)
}
