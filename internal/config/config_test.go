package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir())) // no .env file here
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 8000, cfg.AppPort)
		assert.Equal(t, time.Second, cfg.AutosaveDelay)
		assert.Equal(t, 30*time.Second, cfg.FeedbackTimeout)
		assert.Equal(t, 3, cfg.MaxFollowUpRounds)
		assert.Equal(t, 50, cfg.DailyUsageLimit)
		assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.StreamURL())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("AUTOSAVE_DELAY", "250ms")
		t.Setenv("MAX_FOLLOWUP_ROUNDS", "5")
		t.Setenv("FEEDBACK_URL", "http://relay.local/api/v1/chat")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 250*time.Millisecond, cfg.AutosaveDelay)
		assert.Equal(t, 5, cfg.MaxFollowUpRounds)
		assert.Equal(t, "http://relay.local/api/v1/chat", cfg.StreamURL())
	})
}
