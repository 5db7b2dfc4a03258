package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"local", "production", "staging", ""} {
		t.Run("env "+env, func(t *testing.T) {
			logger, err := New(env)
			require.NoError(t, err)
			assert.NotNil(t, logger)
			logger.Info("logger constructed")
		})
	}
}
