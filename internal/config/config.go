package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultSystemPrompt opens every relayed chat.
const DefaultSystemPrompt = "You are an AI tutor for a university English course. " +
	"Give clear, concise explanations, focus on language development, and avoid writing whole assignments for the student."

type Config struct {
	AppPort           int           `mapstructure:"APP_PORT"`
	DatabasePath      string        `mapstructure:"DATABASE_PATH"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	LLMBaseURL        string        `mapstructure:"LLM_BASE_URL"`
	LLMAPIKey         string        `mapstructure:"LLM_API_KEY"`
	LLMModel          string        `mapstructure:"LLM_MODEL"`
	FeedbackURL       string        `mapstructure:"FEEDBACK_URL"`
	AutosaveDelay     time.Duration `mapstructure:"AUTOSAVE_DELAY"`
	SaveTimeout       time.Duration `mapstructure:"SAVE_TIMEOUT"`
	FeedbackTimeout   time.Duration `mapstructure:"FEEDBACK_TIMEOUT"`
	MaxFollowUpRounds int           `mapstructure:"MAX_FOLLOWUP_ROUNDS"`
	BeaconURL         string        `mapstructure:"BEACON_URL"`
	DailyUsageLimit   int           `mapstructure:"DAILY_USAGE_LIMIT"`
	SystemPrompt      string        `mapstructure:"SYSTEM_PROMPT"`
}

// StreamURL is the endpoint feedback and follow-up requests are sent to.
func (c *Config) StreamURL() string {
	if c.FeedbackURL != "" {
		return c.FeedbackURL
	}
	return strings.TrimSuffix(c.LLMBaseURL, "/") + "/chat/completions"
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "/data/coursehub.db")
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("LLM_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("LLM_API_KEY", "")
	viper.SetDefault("LLM_MODEL", "gpt-4.1-mini")
	viper.SetDefault("FEEDBACK_URL", "")
	viper.SetDefault("AUTOSAVE_DELAY", "1s")
	viper.SetDefault("SAVE_TIMEOUT", "10s")
	viper.SetDefault("FEEDBACK_TIMEOUT", "30s")
	viper.SetDefault("MAX_FOLLOWUP_ROUNDS", 3)
	viper.SetDefault("BEACON_URL", "")
	viper.SetDefault("DAILY_USAGE_LIMIT", 50)
	viper.SetDefault("SYSTEM_PROMPT", DefaultSystemPrompt)

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
