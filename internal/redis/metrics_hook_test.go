package redis

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/rollcall/internal/metrics"
)

func TestMetricsHook_DialErrorCounted(t *testing.T) {
	hook := &MetricsHook{}
	dial := hook.DialHook(func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	})

	before := testutil.ToFloat64(metrics.StoreConnectionErrors)
	_, err := dial(context.Background(), "tcp", "127.0.0.1:0")

	require.Error(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.StoreConnectionErrors))
}

func TestMetricsHook_DialSuccessNotCounted(t *testing.T) {
	hook := &MetricsHook{}
	dial := hook.DialHook(func(context.Context, string, string) (net.Conn, error) {
		return nil, nil
	})

	before := testutil.ToFloat64(metrics.StoreConnectionErrors)
	_, err := dial(context.Background(), "tcp", "127.0.0.1:0")

	require.NoError(t, err)
	assert.Equal(t, before, testutil.ToFloat64(metrics.StoreConnectionErrors))
}
