//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"efile/internal/platform/config"
	"efile/pkg/testutil/containers"
)

func TestEnsureTopic(t *testing.T) {
	rp := containers.GetManager().Redpanda(t)
	cfg := config.KafkaConfig{
		Brokers:           []string{rp.Broker},
		NotificationTopic: "efile.provision.test",
		Partitions:        1,
		ReplicationFactor: 1,
	}
	cl, err := New(cfg)
	require.NoError(t, err)
	defer cl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, Ping(ctx, cl))

	res, err := EnsureTopic(ctx, cl, cfg)
	require.NoError(t, err)
	require.True(t, res.Created)

	res, err = EnsureTopic(ctx, cl, cfg)
	require.NoError(t, err)
	require.False(t, res.Created, "second run finds the topic")
}
