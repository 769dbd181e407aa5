package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			log, err := New(env)
			require.NoError(t, err)
			assert.NotNil(t, log)
			log.Info("probe")
		})
	}
}

func TestNewWithDefaults(t *testing.T) {
	assert.NotNil(t, NewWithDefaults())
}
