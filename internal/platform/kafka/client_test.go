package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"efile/internal/platform/config"
)

func TestNew(t *testing.T) {
	t.Run("requires brokers", func(t *testing.T) {
		_, err := New(config.KafkaConfig{})
		require.Error(t, err)
	})

	t.Run("builds a lazy client", func(t *testing.T) {
		cl, err := New(config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, NotificationTopic: "efile.notifications"})
		require.NoError(t, err)
		defer cl.Close()
		assert.NotNil(t, cl)
	})
}
